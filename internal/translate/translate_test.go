package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azdigest/internal/bullets"
)

func chatResponse(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	})
	return string(body)
}

func newAzureTestServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatResponse(content)))
	}))
}

func newTranslator(endpoint string) *Translator {
	return New(Options{
		Endpoint:    endpoint,
		Deployment:  "gpt-4o-mini",
		APIKey:      "test-key",
		BulletCount: 3,
		Timeout:     5 * time.Second,
	})
}

func TestUnconfiguredTranslator(t *testing.T) {
	tr := New(Options{BulletCount: 3})
	assert.False(t, tr.Configured())

	out, diag := tr.TranslateBatch(context.Background(), []Item{{Index: 0, Title: "A"}})
	assert.Nil(t, out)
	assert.False(t, diag.Configured)
	assert.False(t, diag.Attempted)
	assert.Equal(t, "AOAI_ENDPOINT/AOAI_DEPLOYMENT not set", diag.Error)
}

func TestConfiguredWithGeminiKeyOnly(t *testing.T) {
	tr := New(Options{GeminiAPIKey: "g-key", BulletCount: 3})
	assert.True(t, tr.Configured())
	assert.Nil(t, tr.client)
}

func TestTranslateBatchSuccess(t *testing.T) {
	envelope := `{"items":[{"index":0,"koreanSummary":["첫 번째 핵심 내용입니다.","두 번째 핵심 내용입니다.","세 번째 핵심 내용입니다."]},{"index":1,"koreanSummary":["다른 글의 요약입니다."]}]}`
	ts := newAzureTestServer(t, envelope)
	defer ts.Close()

	tr := newTranslator(ts.URL)
	items := []Item{
		{Index: 0, Title: "First", Bullets: []string{"One.", "Two.", "Three."}},
		{Index: 1, Title: "Second", Bullets: []string{"Four."}},
	}

	out, diag := tr.TranslateBatch(context.Background(), items)
	require.Len(t, out, 2)
	assert.Len(t, out[0], 3)
	assert.Len(t, out[1], 3)
	assert.True(t, bullets.AnyHangul(out[0]))

	assert.True(t, diag.Configured)
	assert.True(t, diag.Attempted)
	assert.True(t, diag.Succeeded)
	assert.Equal(t, 2, diag.TranslatedPosts)
	assert.Equal(t, "azure-openai", diag.Provider)
	assert.Equal(t, "gpt-4o-mini", diag.Deployment)
	assert.Empty(t, diag.Error)
}

func TestTranslateBatchFencedPayload(t *testing.T) {
	envelope := "```json\n{\"items\":[{\"index\":0,\"koreanSummary\":[\"요약 문장입니다.\"]}]}\n```"
	ts := newAzureTestServer(t, envelope)
	defer ts.Close()

	tr := newTranslator(ts.URL)
	out, diag := tr.TranslateBatch(context.Background(), []Item{{Index: 0, Title: "A"}})
	require.Len(t, out, 1)
	assert.True(t, diag.Succeeded)
}

func TestTranslateBatchMalformedContent(t *testing.T) {
	ts := newAzureTestServer(t, "sorry, I cannot produce JSON today")
	defer ts.Close()

	tr := newTranslator(ts.URL)
	out, diag := tr.TranslateBatch(context.Background(), []Item{{Index: 0, Title: "A"}})
	assert.Nil(t, out)
	assert.True(t, diag.Attempted)
	assert.False(t, diag.Succeeded)
	assert.Contains(t, diag.Error, "unparseable")
}

func TestTranslateBatchNoHangulOutput(t *testing.T) {
	envelope := `{"items":[{"index":0,"koreanSummary":["Just English.","More English.","Still English."]}]}`
	ts := newAzureTestServer(t, envelope)
	defer ts.Close()

	tr := newTranslator(ts.URL)
	out, diag := tr.TranslateBatch(context.Background(), []Item{{Index: 0, Title: "A"}})
	require.Len(t, out, 1)
	assert.False(t, diag.Succeeded)
	assert.Equal(t, 0, diag.TranslatedPosts)
	assert.Contains(t, diag.Error, "no Hangul")
}

func TestTranslateBatchServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"throttled"}}`, http.StatusTooManyRequests)
	}))
	defer ts.Close()

	tr := newTranslator(ts.URL)
	out, diag := tr.TranslateBatch(context.Background(), []Item{{Index: 0, Title: "A"}})
	assert.Nil(t, out)
	assert.True(t, diag.Attempted)
	assert.False(t, diag.Succeeded)
	assert.NotEmpty(t, diag.Error)
}

func TestTranslateBatchEmptyInput(t *testing.T) {
	ts := newAzureTestServer(t, "{}")
	defer ts.Close()

	tr := newTranslator(ts.URL)
	out, diag := tr.TranslateBatch(context.Background(), nil)
	assert.Nil(t, out)
	assert.True(t, diag.Configured)
	assert.False(t, diag.Attempted)
}

func TestDecodeEnvelopeStringEncodedItems(t *testing.T) {
	content := `{"items":"[{\"index\":0,\"koreanSummary\":[\"한글 요약\"]}]"}`
	sets, err := decodeEnvelope(content)
	require.NoError(t, err)
	assert.Equal(t, []string{"한글 요약"}, sets[0])
}

func TestDecodeEnvelopeBulletsKey(t *testing.T) {
	content := `{"items":[{"index":2,"bullets":["대체 키로 온 요약"]}]}`
	sets, err := decodeEnvelope(content)
	require.NoError(t, err)
	assert.Equal(t, []string{"대체 키로 온 요약"}, sets[2])
}

func TestDecodeEnvelopeSingleString(t *testing.T) {
	content := `{"items":[{"index":0,"koreanSummary":"하나의 문자열 요약"}]}`
	sets, err := decodeEnvelope(content)
	require.NoError(t, err)
	assert.Equal(t, []string{"하나의 문자열 요약"}, sets[0])
}

func TestDecodeEnvelopeRejectsMissingItems(t *testing.T) {
	_, err := decodeEnvelope(`{"result":"ok"}`)
	assert.Error(t, err)
}

func TestDecodeEnvelopeSkipsIndexlessEntries(t *testing.T) {
	content := `{"items":[{"koreanSummary":["버려질 요약"]},{"index":1,"koreanSummary":["유지될 요약"]}]}`
	sets, err := decodeEnvelope(content)
	require.NoError(t, err)
	assert.Len(t, sets, 1)
	assert.Equal(t, []string{"유지될 요약"}, sets[1])
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`{"a":1}`))
}
