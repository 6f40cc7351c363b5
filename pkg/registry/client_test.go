package registry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/registry"
)

func hubStub(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return ts
}

func jsonHandler(body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestGetModelInfo(t *testing.T) {
	t.Parallel()

	ts := hubStub(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/api/models/org/model": jsonHandler(`{
			"id": "org/model",
			"sha": "abc123",
			"siblings": [{"rfilename": "config.json"}, {"rfilename": "model.safetensors"}],
			"likes": 12,
			"cardData": {"license": "apache-2.0"}
		}`),
	})

	c := registry.NewClient(ts.URL, "", time.Second)

	info, err := c.GetModelInfo(context.Background(), "org/model", "main")
	require.NoError(t, err)

	assert.Equal(t, "abc123", info.SHA)
	assert.Equal(t, []string{"config.json", "model.safetensors"}, info.Siblings)
	require.NotNil(t, info.CardData)
	assert.Equal(t, "apache-2.0", info.CardData.License)
	assert.False(t, info.Gated)
}

func TestGetModelInfo_NotFound(t *testing.T) {
	t.Parallel()

	ts := hubStub(t, nil)
	c := registry.NewClient(ts.URL, "", time.Second)

	_, err := c.GetModelInfo(context.Background(), "org/missing", "main")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestGetModelInfo_Gated(t *testing.T) {
	t.Parallel()

	ts := hubStub(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/api/models/org/gated": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error": "Access to this gated repository requires approval"}`))
		},
	})
	c := registry.NewClient(ts.URL, "", time.Second)

	_, err := c.GetModelInfo(context.Background(), "org/gated", "main")
	assert.ErrorIs(t, err, registry.ErrGated)
}

func TestGetConfig(t *testing.T) {
	t.Parallel()

	ts := hubStub(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/org/model/resolve/main/config.json": jsonHandler(`{
			"architectures": ["LlamaForCausalLM"],
			"model_type": "llama",
			"quantization_config": {"bits": 4}
		}`),
		"/org/remote/resolve/main/config.json": jsonHandler(`{
			"architectures": ["CustomModel"],
			"auto_map": {"AutoModelForCausalLM": "modeling_custom.CustomModel"}
		}`),
	})
	c := registry.NewClient(ts.URL, "", time.Second)

	cfg, err := c.GetConfig(context.Background(), "org/model", "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"LlamaForCausalLM"}, cfg.Architectures)
	assert.Equal(t, 4, cfg.QuantizationBits)

	_, err = c.GetConfig(context.Background(), "org/remote", "main")
	assert.ErrorIs(t, err, registry.ErrRemoteCode)
}

func TestGetTokenizer(t *testing.T) {
	t.Parallel()

	ts := hubStub(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/org/model/resolve/main/tokenizer_config.json": jsonHandler(`{
			"tokenizer_class": "LlamaTokenizer",
			"chat_template": "{{ messages }}"
		}`),
	})
	c := registry.NewClient(ts.URL, "", time.Second)

	tok, err := c.GetTokenizer(context.Background(), "org/model", "main")
	require.NoError(t, err)
	assert.Equal(t, "LlamaTokenizer", tok.Class)
	assert.True(t, tok.HasChatTemplate)

	_, err = c.GetTokenizer(context.Background(), "org/bare", "main")
	assert.ErrorIs(t, err, registry.ErrTokenizer)
}

func TestGetCard_StripsFrontMatter(t *testing.T) {
	t.Parallel()

	ts := hubStub(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/api/models/org/model": jsonHandler(`{
			"id": "org/model",
			"cardData": {"license": "mit", "tags": ["text-generation"]}
		}`),
		"/org/model/resolve/main/README.md": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("---\nlicense: mit\ntags:\n- text-generation\n---\nThis model does things.\n"))
		},
	})
	c := registry.NewClient(ts.URL, "", time.Second)

	card, err := c.GetCard(context.Background(), "org/model")
	require.NoError(t, err)

	assert.Equal(t, "mit", card.License)
	assert.Equal(t, []string{"text-generation"}, card.Tags)
	assert.Equal(t, "This model does things.\n", card.Text)
}

func TestGetSafetensorsMetadata(t *testing.T) {
	t.Parallel()

	ts := hubStub(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/api/models/org/model": jsonHandler(`{
			"id": "org/model",
			"safetensors": {"parameters": {"BF16": 7240000000}, "total": 7240000000}
		}`),
		"/api/models/org/bare": jsonHandler(`{"id": "org/bare"}`),
	})
	c := registry.NewClient(ts.URL, "", time.Second)

	md, err := c.GetSafetensorsMetadata(context.Background(), "org/model")
	require.NoError(t, err)
	require.NotNil(t, md)
	assert.Equal(t, int64(7_240_000_000), md.Total)

	md, err = c.GetSafetensorsMetadata(context.Background(), "org/bare")
	require.NoError(t, err)
	assert.Nil(t, md)
}
