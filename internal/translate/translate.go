// Package translate enriches digest posts with Korean insight bullets
// through an external text model. Every failure mode here degrades to a
// diagnostics record; the digest never depends on this succeeding.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"azdigest/internal/bullets"
	"azdigest/internal/logger"
)

// batchLimit caps how many posts go into one enrichment request.
const batchLimit = 10

// Item is one post handed to the model.
type Item struct {
	Index   int      `json:"index"`
	Title   string   `json:"title"`
	Bullets []string `json:"englishSummary"`
}

// Diagnostics reports what the enrichment attempt did. It rides along in
// the digest stats payload.
type Diagnostics struct {
	Configured      bool   `json:"configured"`
	Attempted       bool   `json:"attempted"`
	Succeeded       bool   `json:"succeeded"`
	TranslatedPosts int    `json:"translatedPosts"`
	Provider        string `json:"provider,omitempty"`
	EndpointHost    string `json:"endpointHost,omitempty"`
	Deployment      string `json:"deployment,omitempty"`
	APIVersion      string `json:"apiVersion,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Options configure a Translator. Azure OpenAI is the primary provider;
// a Gemini API key alone enables the fallback provider.
type Options struct {
	Endpoint     string
	Deployment   string
	APIVersion   string
	APIKey       string
	GeminiAPIKey string
	BulletCount  int
	Timeout      time.Duration
}

type Translator struct {
	opts   Options
	client *openai.Client // nil when Azure OpenAI is not configured
}

func New(opts Options) *Translator {
	if opts.BulletCount < 1 {
		opts.BulletCount = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 18 * time.Second
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "2024-12-01-preview"
	}

	t := &Translator{opts: opts}
	if opts.Endpoint != "" && opts.Deployment != "" {
		cfg := openai.DefaultAzureConfig(opts.APIKey, opts.Endpoint)
		cfg.APIVersion = opts.APIVersion
		t.client = openai.NewClientWithConfig(cfg)
	}
	return t
}

// Configured reports whether any provider can be called at all.
func (t *Translator) Configured() bool {
	return t.client != nil || t.opts.GeminiAPIKey != ""
}

// TranslateBatch asks the model for Korean bullet sets for up to ten
// items. The returned map holds normalized bullet sets keyed by item
// index; indexes outside the attempted slice never appear. All errors are
// absorbed into the diagnostics record.
func (t *Translator) TranslateBatch(ctx context.Context, items []Item) (map[int][]string, Diagnostics) {
	diag := Diagnostics{
		Deployment: t.opts.Deployment,
		APIVersion: t.opts.APIVersion,
	}

	if !t.Configured() {
		diag.Error = "AOAI_ENDPOINT/AOAI_DEPLOYMENT not set"
		logger.Info("enrichment not configured, skipping Korean translation")
		return nil, diag
	}

	diag.Configured = true
	if len(items) == 0 {
		return nil, diag
	}
	diag.Attempted = true

	slice := items
	if len(slice) > batchLimit {
		slice = slice[:batchLimit]
	}

	payload, err := json.Marshal(struct {
		Items []Item `json:"items"`
	}{Items: slice})
	if err != nil {
		diag.Error = err.Error()
		return nil, diag
	}

	systemPrompt := fmt.Sprintf("You are an expert technical analyst who extracts key insights from blog posts.\n"+
		"Your task: Read the English summary of each blog post and extract %d key insights in Korean.\n"+
		"Rules:\n"+
		"- Provide exactly %d Korean bullet points per item that capture the CORE INSIGHTS of the entire blog post.\n"+
		"- Focus on actionable takeaways, key concepts, or important implications.\n"+
		"- Do NOT simply translate the English text. Instead, ANALYZE and SYNTHESIZE the key insights.\n"+
		"- Write in natural, professional Korean.\n"+
		"- Output valid JSON only, with the exact schema: { items: [ { index: 0, koreanSummary: [ ... ] } ] }",
		t.opts.BulletCount, t.opts.BulletCount)
	userPrompt := fmt.Sprintf("Extract key insights from this JSON payload:\n%s", payload)

	// The enrichment call gets its own deadline so a slow model cannot
	// eat the whole request budget.
	callCtx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	defer cancel()

	var content string
	if t.client != nil {
		diag.Provider = "azure-openai"
		diag.EndpointHost = safeHost(t.opts.Endpoint)
		content, err = t.chatAzure(callCtx, systemPrompt, userPrompt)
	} else {
		diag.Provider = "gemini"
		content, err = t.chatGemini(callCtx, systemPrompt+"\n\n"+userPrompt)
	}
	if err != nil {
		logger.Warn("enrichment call failed", "provider", diag.Provider, "error", err)
		diag.Error = err.Error()
		return nil, diag
	}

	sets, err := decodeEnvelope(content)
	if err != nil {
		logger.Warn("enrichment response rejected", "error", err)
		diag.Error = err.Error()
		return nil, diag
	}

	out := make(map[int][]string)
	for idx, raw := range sets {
		if idx < 0 || idx >= len(slice) {
			continue
		}
		normalized := bullets.Normalize(raw, t.opts.BulletCount, bullets.KoreanFillers)
		out[idx] = normalized
		if bullets.AnyHangul(normalized) {
			diag.TranslatedPosts++
		}
	}

	diag.Succeeded = diag.TranslatedPosts > 0
	if !diag.Succeeded {
		diag.Error = "enrichment call succeeded but produced no Hangul output"
	}
	return out, diag
}

func (t *Translator) chatAzure(ctx context.Context, system, user string) (string, error) {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.opts.Deployment,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   900,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in enrichment response")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", errors.New("empty content in enrichment response")
	}
	return content, nil
}

func safeHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return u.Host
}
