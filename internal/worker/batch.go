package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/plenaria/internal/pipeline"
)

// SessionResolver resolves one session against its source video.
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionPath, videoPath string) (*pipeline.RunSummary, error)
}

// SessionJob pairs one session document with its video.
type SessionJob struct {
	SessionPath string
	VideoPath   string
	Resolver    SessionResolver
}

// Execute runs the resolution job.
func (j *SessionJob) Execute(ctx context.Context) Result {
	summary, err := j.Resolver.ResolveSession(ctx, j.SessionPath, j.VideoPath)
	return &SessionResult{
		SessionPath: j.SessionPath,
		Summary:     summary,
		Error:       err,
	}
}

// SessionResult is the outcome of one session job. A per-session error
// is recorded here, never propagated as a batch failure.
type SessionResult struct {
	SessionPath string
	Summary     *pipeline.RunSummary
	Error       error
}

// GetError returns the error from the session result.
func (r *SessionResult) GetError() error {
	return r.Error
}

// BatchProcessor resolves multiple sessions concurrently. Sessions in
// one batch share a resolver, which serializes roster updates itself.
type BatchProcessor struct {
	resolver    SessionResolver
	concurrency int
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(resolver SessionResolver, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		resolver:    resolver,
		concurrency: concurrency,
	}
}

// ProcessEntries resolves the given session/video pairs concurrently.
func (b *BatchProcessor) ProcessEntries(ctx context.Context, entries []SessionEntry) []*SessionResult {
	if len(entries) == 0 {
		return []*SessionResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, entry := range entries {
		pool.Submit(&SessionJob{
			SessionPath: entry.SessionPath,
			VideoPath:   entry.VideoPath,
			Resolver:    b.resolver,
		})
	}

	results := pool.Wait()

	sessionResults := make([]*SessionResult, len(results))
	for i, result := range results {
		sessionResults[i] = result.(*SessionResult)
	}
	return sessionResults
}

// ProcessFile reads session entries from a file and resolves them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*SessionResult, error) {
	entries, err := ReadEntriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return b.ProcessEntries(ctx, entries), nil
}

// SessionEntry is one batch-file line: a session document and its
// source video.
type SessionEntry struct {
	SessionPath string
	VideoPath   string
}

// ReadEntriesFromFile parses a batch file. Each line holds a session
// path and a video path separated by whitespace; blank lines and lines
// starting with # are skipped, duplicate session paths collapsed.
func ReadEntriesFromFile(filePath string) ([]SessionEntry, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []SessionEntry
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected '<session.json> <video>', got %q", line, text)
		}

		if seen[fields[0]] {
			continue
		}
		seen[fields[0]] = true
		entries = append(entries, SessionEntry{SessionPath: fields[0], VideoPath: fields[1]})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return entries, nil
}
