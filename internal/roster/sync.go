package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ppiankov/plenaria/internal/model"
)

const discoverySource = "Extracted from session transcripts"

// MergeDiscovered reconciles names discovered by inference (vision or
// lexical extraction) with the persisted roster. Insert-only: existing
// entries are never overwritten or removed, and matching is by exact
// canonical name. Returns how many new entries were added; zero means
// no work, not failure.
func MergeDiscovered(repo Repository, discovered []string) (int, error) {
	roster, err := repo.Load()
	if err != nil {
		return 0, fmt.Errorf("load roster: %w", err)
	}

	added := 0
	for _, name := range discovered {
		if roster.HasName(name) {
			continue
		}
		roster.Speakers = append(roster.Speakers, model.NewDiscoveredSpeaker(name))
		added++
		logrus.WithField("name", name).Info("added new speaker")
	}

	roster.LastUpdated = time.Now()
	roster.TotalCount = len(roster.Speakers)
	if roster.Source == "" {
		roster.Source = discoverySource
	}

	if err := repo.Save(roster); err != nil {
		return 0, fmt.Errorf("save roster: %w", err)
	}
	return added, nil
}

// apiMember mirrors the official assembly API response schema.
type apiMember struct {
	Name      string `json:"nombre"`
	Party     string `json:"partido"`
	Province  string `json:"provincia"`
	Role      string `json:"cargo"`
	Committee string `json:"comision"`
}

// APIClient fetches the authoritative roster from the legislative-body
// API.
type APIClient struct {
	httpClient *http.Client
	url        string
	userAgent  string
}

// NewAPIClient creates a client for the given endpoint.
func NewAPIClient(endpoint, userAgent string, timeout time.Duration, proxy func(*http.Request) (*url.URL, error)) *APIClient {
	return &APIClient{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: proxy,
			},
		},
		url:       endpoint,
		userAgent: userAgent,
	}
}

// fetch retrieves the raw member list.
func (c *APIClient) fetch(ctx context.Context) ([]apiMember, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch roster API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("roster API status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10_000_000))
	if err != nil {
		return nil, fmt.Errorf("read roster API body: %w", err)
	}

	var members []apiMember
	if err := json.Unmarshal(body, &members); err != nil {
		return nil, fmt.Errorf("parse roster API response: %w", err)
	}
	return members, nil
}

// Bootstrap pulls the authoritative roster and reconciles it with the
// store. This is a different trust tier than MergeDiscovered: API data
// may overwrite placeholder fields on existing entries, and new members
// get sequential official ids. Returns the number of entries created
// or updated.
func (c *APIClient) Bootstrap(ctx context.Context, repo Repository) (int, error) {
	members, err := c.fetch(ctx)
	if err != nil {
		return 0, err
	}

	roster, err := repo.Load()
	if err != nil {
		return 0, fmt.Errorf("load roster: %w", err)
	}

	changed := 0
	for idx, m := range members {
		if m.Name == "" {
			continue
		}

		if existing := findByName(roster, m.Name); existing != nil {
			if applyAuthoritative(existing, m) {
				changed++
			}
			continue
		}

		speaker := model.Speaker{
			ID:             fmt.Sprintf("AN-%03d", idx+1),
			Name:           m.Name,
			Party:          orDefault(m.Party, "Sin partido"),
			Province:       orDefault(m.Province, "Sin provincia"),
			Role:           orDefault(m.Role, model.RoleDefault),
			Committee:      orDefault(m.Committee, "Sin comisión"),
			AlternateNames: model.AlternateNamesFor(m.Name),
		}
		roster.Speakers = append(roster.Speakers, speaker)
		changed++
	}

	roster.LastUpdated = time.Now()
	roster.Source = c.url
	roster.TotalCount = len(roster.Speakers)

	if err := repo.Save(roster); err != nil {
		return 0, fmt.Errorf("save roster: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"total":   roster.TotalCount,
		"changed": changed,
	}).Info("roster bootstrap complete")
	return changed, nil
}

// applyAuthoritative fills placeholder fields on an inferred entry with
// API data. Fields already carrying real values are left alone.
func applyAuthoritative(s *model.Speaker, m apiMember) bool {
	changed := false
	if s.Party == model.PartyUnknown && m.Party != "" {
		s.Party = m.Party
		changed = true
	}
	if s.Province == model.ProvinceUnknown && m.Province != "" {
		s.Province = m.Province
		changed = true
	}
	if s.Committee == model.CommitteeUnknown && m.Committee != "" {
		s.Committee = m.Committee
		changed = true
	}
	if len(s.AlternateNames) == 0 {
		if alts := model.AlternateNamesFor(s.Name); len(alts) > 0 {
			s.AlternateNames = alts
			changed = true
		}
	}
	return changed
}

func findByName(roster *model.Roster, name string) *model.Speaker {
	for i := range roster.Speakers {
		if roster.Speakers[i].Name == name {
			return &roster.Speakers[i]
		}
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
