package roster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ppiankov/plenaria/internal/model"
)

func TestMergeDiscovered_InsertOnly(t *testing.T) {
	repo := NewMemoryRepository()

	added, err := MergeDiscovered(repo, []string{"Juan Pérez", "Rosa Molina"})
	if err != nil {
		t.Fatalf("MergeDiscovered failed: %v", err)
	}
	if added != 2 {
		t.Errorf("Expected 2 added, got %d", added)
	}

	roster, _ := repo.Load()
	if roster.TotalCount != 2 || len(roster.Speakers) != 2 {
		t.Errorf("Expected 2 speakers, got count=%d len=%d", roster.TotalCount, len(roster.Speakers))
	}

	juan := roster.FindByID("AN-JUAN-PÉREZ")
	if juan == nil {
		t.Fatal("Expected deterministic slug id AN-JUAN-PÉREZ")
	}
	if juan.Party != model.PartyUnknown || juan.Role != model.RoleDefault {
		t.Errorf("Expected placeholder fields on discovered entry, got %+v", juan)
	}

	// Re-merging the same names plus one new one only inserts the new one.
	added, err = MergeDiscovered(repo, []string{"Juan Pérez", "Carlos Vega"})
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if added != 1 {
		t.Errorf("Expected 1 added on re-merge, got %d", added)
	}

	roster, _ = repo.Load()
	if len(roster.Speakers) != 3 {
		t.Errorf("Expected 3 speakers after re-merge, got %d", len(roster.Speakers))
	}
}

func TestMergeDiscovered_NeverMutatesExisting(t *testing.T) {
	repo := NewMemoryRepository()
	seeded := &model.Roster{Speakers: []model.Speaker{{
		ID: "AN-001", Name: "Juan Pérez", Party: "Partido X", Province: "Pichincha",
		Role: "Asambleísta", Committee: "Fiscalización", AlternateNames: []string{"Pérez"},
	}}}
	if err := repo.Save(seeded); err != nil {
		t.Fatal(err)
	}

	if _, err := MergeDiscovered(repo, []string{"Juan Pérez"}); err != nil {
		t.Fatalf("MergeDiscovered failed: %v", err)
	}

	roster, _ := repo.Load()
	got := roster.Speakers[0]
	if got.ID != "AN-001" || got.Party != "Partido X" {
		t.Errorf("Existing entry mutated: %+v", got)
	}
}

func TestBootstrap_FetchesAndTransforms(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"nombre": "Juan Pérez", "partido": "Partido X", "provincia": "Pichincha", "cargo": "Asambleísta", "comision": "Fiscalización"},
			{"nombre": "Rosa Molina", "partido": "", "provincia": "Guayas"}
		]`))
	}))
	defer server.Close()

	repo := NewMemoryRepository()
	client := NewAPIClient(server.URL, "test", 5*time.Second, nil)

	changed, err := client.Bootstrap(context.Background(), repo)
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if changed != 2 {
		t.Errorf("Expected 2 changed, got %d", changed)
	}

	roster, _ := repo.Load()
	if roster.Source != server.URL {
		t.Errorf("Expected source %s, got %s", server.URL, roster.Source)
	}

	juan := roster.FindByID("AN-001")
	if juan == nil || juan.Name != "Juan Pérez" {
		t.Fatalf("Expected AN-001 Juan Pérez, got %+v", juan)
	}
	if len(juan.AlternateNames) != 2 || juan.AlternateNames[0] != "Pérez" || juan.AlternateNames[1] != "J. Pérez" {
		t.Errorf("Unexpected alternate names: %v", juan.AlternateNames)
	}

	rosa := roster.FindByID("AN-002")
	if rosa == nil || rosa.Party != "Sin partido" {
		t.Errorf("Expected empty API fields to default, got %+v", rosa)
	}
}

func TestBootstrap_FillsPlaceholdersOnExistingEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"nombre": "Juan Pérez", "partido": "Partido X", "provincia": "Pichincha", "comision": "Fiscalización"}]`))
	}))
	defer server.Close()

	repo := NewMemoryRepository()
	if _, err := MergeDiscovered(repo, []string{"Juan Pérez"}); err != nil {
		t.Fatal(err)
	}

	client := NewAPIClient(server.URL, "test", 5*time.Second, nil)
	if _, err := client.Bootstrap(context.Background(), repo); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	roster, _ := repo.Load()
	if len(roster.Speakers) != 1 {
		t.Fatalf("Expected bootstrap to update the inferred entry, not duplicate it; got %d entries", len(roster.Speakers))
	}

	juan := roster.Speakers[0]
	if juan.Party != "Partido X" || juan.Province != "Pichincha" || juan.Committee != "Fiscalización" {
		t.Errorf("Expected placeholders replaced with API data, got %+v", juan)
	}
	// The inferred slug id is preserved across tiers.
	if juan.ID != "AN-JUAN-PÉREZ" {
		t.Errorf("Expected original id kept, got %s", juan.ID)
	}
}

func TestBootstrap_APIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	repo := NewMemoryRepository()
	client := NewAPIClient(server.URL, "test", 5*time.Second, nil)

	if _, err := client.Bootstrap(context.Background(), repo); err == nil {
		t.Error("Expected error on API failure")
	}

	// Failed bootstrap must leave the store untouched.
	roster, _ := repo.Load()
	if len(roster.Speakers) != 0 {
		t.Errorf("Expected empty roster after failed bootstrap, got %d entries", len(roster.Speakers))
	}
}

func TestFileRepository_RoundTripAndMissingFile(t *testing.T) {
	path := t.TempDir() + "/speakers/asambleistas.json"
	repo := NewFileRepository(path)

	roster, err := repo.Load()
	if err != nil {
		t.Fatalf("Load of missing file should init empty roster, got %v", err)
	}
	if len(roster.Speakers) != 0 {
		t.Errorf("Expected empty roster, got %d", len(roster.Speakers))
	}

	roster.Speakers = append(roster.Speakers, model.NewDiscoveredSpeaker("Juan Pérez"))
	roster.TotalCount = 1
	if err := repo.Save(roster); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := repo.Load()
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if reloaded.TotalCount != 1 || reloaded.Speakers[0].Name != "Juan Pérez" {
		t.Errorf("Round trip mismatch: %+v", reloaded)
	}
}
