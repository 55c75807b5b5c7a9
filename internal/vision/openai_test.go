package vision

import "testing"

func TestParseOverlayAnswer_Identified(t *testing.T) {
	verdict := parseOverlayAnswer(`{"speaker": "Ana Pérez"}`)

	if verdict.Outcome != OutcomeIdentified {
		t.Fatalf("Expected identified, got %s", verdict.Outcome)
	}
	if verdict.Name != "Ana Pérez" {
		t.Errorf("Expected 'Ana Pérez', got %q", verdict.Name)
	}
	if !verdict.Positive() {
		t.Error("Expected positive verdict")
	}
}

func TestParseOverlayAnswer_NullSpeaker(t *testing.T) {
	verdict := parseOverlayAnswer(`{"speaker": null}`)

	if verdict.Outcome != OutcomeNotVisible {
		t.Errorf("Expected not_visible, got %s", verdict.Outcome)
	}
	if verdict.Positive() {
		t.Error("Expected negative verdict")
	}
}

func TestParseOverlayAnswer_EmptyName(t *testing.T) {
	verdict := parseOverlayAnswer(`{"speaker": "  "}`)

	if verdict.Outcome != OutcomeNotVisible {
		t.Errorf("Expected whitespace-only name to read as not_visible, got %s", verdict.Outcome)
	}
}

func TestParseOverlayAnswer_MarkdownFence(t *testing.T) {
	cases := []string{
		"```json\n{\"speaker\": \"Juan Ruiz\"}\n```",
		"```\n{\"speaker\": \"Juan Ruiz\"}\n```",
	}

	for _, raw := range cases {
		verdict := parseOverlayAnswer(raw)
		if verdict.Outcome != OutcomeIdentified || verdict.Name != "Juan Ruiz" {
			t.Errorf("Fenced answer %q: expected identified Juan Ruiz, got %s %q", raw, verdict.Outcome, verdict.Name)
		}
	}
}

func TestParseOverlayAnswer_Malformed(t *testing.T) {
	cases := []string{
		"I cannot see any overlay in this image.",
		`{"name": "wrong schema"`,
		"",
	}

	for _, raw := range cases {
		verdict := parseOverlayAnswer(raw)
		if verdict.Outcome != OutcomeMalformed {
			t.Errorf("Answer %q: expected malformed, got %s", raw, verdict.Outcome)
		}
		if verdict.Positive() {
			t.Errorf("Answer %q: malformed verdict must not be positive", raw)
		}
	}
}

func TestParseOverlayAnswer_WrongSchemaButValidJSON(t *testing.T) {
	// Valid JSON with no speaker field decodes to a nil pointer, which
	// must degrade to not-visible rather than crash or identify.
	verdict := parseOverlayAnswer(`{"person": "Ana Pérez"}`)

	if verdict.Outcome != OutcomeNotVisible {
		t.Errorf("Expected not_visible, got %s", verdict.Outcome)
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Error("Expected error for missing API key")
	}

	p, err := NewOpenAIProvider(Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Expected provider name openai, got %s", p.Name())
	}
}
