package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/plenaria/internal/model"
)

// LoadSession reads a session document. A missing or unparseable file
// is fatal for that session: there is no meaningful partial result
// without a transcript.
func LoadSession(path string) (*model.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &session, nil
}

// SaveSession writes the session document whole, replacing the
// previous file. Indented output keeps the documents diffable.
func SaveSession(path string, session *model.Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create sessions dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(session); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// SessionIDFromPath derives a session id from its file name:
// "temp/abc123.json" -> "abc123".
func SessionIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
