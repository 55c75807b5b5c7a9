package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// overlayPrompt asks for a strict JSON answer so a missing overlay is
// an explicit signal, not an absent field.
const overlayPrompt = `Look at this image from an Asamblea Nacional del Ecuador session.

Find the speaker identification overlay (usually a colored bar at the bottom with text).

If you see a clear speaker name, return ONLY a JSON object:
{"speaker": "Full Name"}

If NO speaker overlay is visible or text is unclear, return:
{"speaker": null}

Return ONLY valid JSON, no other text.`

// OpenAIProvider implements the Provider interface on the OpenAI
// vision-capable chat API.
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI vision provider.
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// ReadOverlay sends one frame to the vision API and parses the strict
// JSON answer. A non-nil error means the call itself failed; schema
// problems in the answer come back as OutcomeMalformed instead.
func (p *OpenAIProvider) ReadOverlay(ctx context.Context, frameJPEG []byte) (Verdict, error) {
	model := p.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 100
	}

	timeout := p.config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(frameJPEG)

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: overlayPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return Verdict{}, fmt.Errorf("vision API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Verdict{Outcome: OutcomeMalformed}, nil
	}

	return parseOverlayAnswer(resp.Choices[0].Message.Content), nil
}

// parseOverlayAnswer turns the model's raw answer into a tagged
// verdict. Anything outside the {"speaker": ...} schema is malformed,
// which downstream treats the same as "not visible".
func parseOverlayAnswer(raw string) Verdict {
	text := stripCodeFence(strings.TrimSpace(raw))

	var answer struct {
		Speaker *string `json:"speaker"`
	}
	if err := json.Unmarshal([]byte(text), &answer); err != nil {
		return Verdict{Outcome: OutcomeMalformed}
	}

	if answer.Speaker == nil || strings.TrimSpace(*answer.Speaker) == "" {
		return Verdict{Outcome: OutcomeNotVisible}
	}

	return Verdict{
		Outcome: OutcomeIdentified,
		Name:    strings.TrimSpace(*answer.Speaker),
	}
}

// stripCodeFence removes a surrounding markdown code block, which some
// models wrap around JSON answers despite instructions.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	parts := strings.SplitN(text, "```", 3)
	if len(parts) < 2 {
		return text
	}

	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}
