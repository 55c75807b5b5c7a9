package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/ppiankov/plenaria/internal/pipeline"
)

// fakeResolver records calls and fails for a configurable session.
type fakeResolver struct {
	calls  int32
	failOn string
}

func (f *fakeResolver) ResolveSession(ctx context.Context, sessionPath, videoPath string) (*pipeline.RunSummary, error) {
	atomic.AddInt32(&f.calls, 1)
	if sessionPath == f.failOn {
		return nil, errors.New("video file not found")
	}
	return &pipeline.RunSummary{
		SessionID:  pipeline.SessionIDFromPath(sessionPath),
		OutputPath: sessionPath,
	}, nil
}

func writeBatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadEntriesFromFile(t *testing.T) {
	path := writeBatchFile(t, `
# session list
a.json videos/a.mp4
b.json videos/b.mp4

a.json videos/a-duplicate.mp4
`)

	entries, err := ReadEntriesFromFile(path)
	if err != nil {
		t.Fatalf("ReadEntriesFromFile failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries (comments, blanks, duplicates skipped), got %d", len(entries))
	}
	if entries[0].SessionPath != "a.json" || entries[0].VideoPath != "videos/a.mp4" {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}
}

func TestReadEntriesFromFile_MalformedLine(t *testing.T) {
	path := writeBatchFile(t, "only-one-field\n")

	if _, err := ReadEntriesFromFile(path); err == nil {
		t.Error("Expected error for malformed line")
	}
}

func TestBatchProcessor_AbsorbsPerSessionFailures(t *testing.T) {
	resolver := &fakeResolver{failOn: "b.json"}
	processor := NewBatchProcessor(resolver, 2)

	results := processor.ProcessEntries(context.Background(), []SessionEntry{
		{SessionPath: "a.json", VideoPath: "a.mp4"},
		{SessionPath: "b.json", VideoPath: "b.mp4"},
		{SessionPath: "c.json", VideoPath: "c.mp4"},
	})

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	failures := 0
	for _, r := range results {
		if r.GetError() != nil {
			failures++
			if r.SessionPath != "b.json" {
				t.Errorf("Unexpected failing session %s", r.SessionPath)
			}
		} else if r.Summary == nil {
			t.Errorf("Successful result %s missing summary", r.SessionPath)
		}
	}
	if failures != 1 {
		t.Errorf("Expected exactly 1 failure, got %d", failures)
	}
	if atomic.LoadInt32(&resolver.calls) != 3 {
		t.Errorf("Expected all 3 sessions attempted, got %d", resolver.calls)
	}
}

func TestBatchProcessor_EmptyInput(t *testing.T) {
	processor := NewBatchProcessor(&fakeResolver{}, 2)
	if results := processor.ProcessEntries(context.Background(), nil); len(results) != 0 {
		t.Errorf("Expected no results for empty input, got %d", len(results))
	}
}
