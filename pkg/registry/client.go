package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefHubURL      = "https://huggingface.co"
	defCallTimeout = 30 * time.Second
)

// client talks to the hub HTTP API. Every call carries a bounded timeout; a
// timed-out lookup fails the validation step that issued it, it is not
// retried (the submitter is waiting synchronously).
type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) Registry {
	if baseURL == "" {
		baseURL = DefHubURL
	}
	if timeout == 0 {
		timeout = defCallTimeout
	}

	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if strings.Contains(strings.ToLower(string(body)), "gated") {
			return nil, ErrGated
		}

		return nil, ErrNotFound
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("hub returned status %d", resp.StatusCode)
	}
}

type hubModelInfo struct {
	ID       string `json:"id"`
	SHA      string `json:"sha"`
	Siblings []struct {
		RFilename string `json:"rfilename"`
	} `json:"siblings"`
	Likes     int       `json:"likes"`
	Downloads int       `json:"downloads"`
	CreatedAt time.Time `json:"createdAt"`
	Gated     any       `json:"gated"`
	CardData  *struct {
		License     string   `json:"license"`
		LicenseName string   `json:"license_name"`
		LicenseLink string   `json:"license_link"`
		Tags        []string `json:"tags"`
	} `json:"cardData"`
	Safetensors *struct {
		Parameters map[string]int64 `json:"parameters"`
		Total      int64            `json:"total"`
	} `json:"safetensors"`
}

func (c *client) fetchModelInfo(ctx context.Context, modelID, revision string) (hubModelInfo, error) {
	url := fmt.Sprintf("%s/api/models/%s", c.baseURL, modelID)
	if revision != "" && revision != "main" {
		url = fmt.Sprintf("%s/revision/%s", url, revision)
	}

	body, err := c.get(ctx, url)
	if err != nil {
		return hubModelInfo{}, err
	}

	var info hubModelInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return hubModelInfo{}, fmt.Errorf("decoding model info: %w", err)
	}

	return info, nil
}

func (c *client) GetModelInfo(ctx context.Context, modelID, revision string) (ModelInfo, error) {
	raw, err := c.fetchModelInfo(ctx, modelID, revision)
	if err != nil {
		return ModelInfo{}, err
	}

	info := ModelInfo{
		ID:        raw.ID,
		SHA:       raw.SHA,
		Likes:     raw.Likes,
		Downloads: raw.Downloads,
		CreatedAt: raw.CreatedAt,
		Gated:     raw.Gated != nil && raw.Gated != false && raw.Gated != "false",
	}
	for _, s := range raw.Siblings {
		info.Siblings = append(info.Siblings, s.RFilename)
	}
	if raw.CardData != nil {
		info.CardData = &Card{
			License:     raw.CardData.License,
			LicenseName: raw.CardData.LicenseName,
			LicenseLink: raw.CardData.LicenseLink,
			Tags:        raw.CardData.Tags,
		}
	}

	return info, nil
}

func (c *client) GetConfig(ctx context.Context, modelID, revision string) (ModelConfig, error) {
	if revision == "" {
		revision = "main"
	}
	body, err := c.get(ctx, fmt.Sprintf("%s/%s/resolve/%s/config.json", c.baseURL, modelID, revision))
	if err != nil {
		return ModelConfig{}, err
	}

	var raw struct {
		Architectures []string       `json:"architectures"`
		ModelType     string         `json:"model_type"`
		AutoMap       map[string]any `json:"auto_map"`
		Quantization  *struct {
			Bits int `json:"bits"`
		} `json:"quantization_config"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return ModelConfig{}, fmt.Errorf("decoding config.json: %w", err)
	}

	// auto_map means the model classes live in the repository itself.
	if len(raw.AutoMap) > 0 {
		return ModelConfig{}, ErrRemoteCode
	}

	cfg := ModelConfig{
		Architectures: raw.Architectures,
		ModelType:     raw.ModelType,
	}
	if raw.Quantization != nil {
		cfg.QuantizationBits = raw.Quantization.Bits
	}

	return cfg, nil
}

func (c *client) GetTokenizer(ctx context.Context, modelID, revision string) (TokenizerConfig, error) {
	if revision == "" {
		revision = "main"
	}
	body, err := c.get(ctx, fmt.Sprintf("%s/%s/resolve/%s/tokenizer_config.json", c.baseURL, modelID, revision))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenizerConfig{}, ErrTokenizer
		}

		return TokenizerConfig{}, err
	}

	var raw struct {
		TokenizerClass string `json:"tokenizer_class"`
		ChatTemplate   any    `json:"chat_template"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return TokenizerConfig{}, ErrTokenizer
	}

	return TokenizerConfig{
		Class:           raw.TokenizerClass,
		HasChatTemplate: raw.ChatTemplate != nil,
	}, nil
}

func (c *client) GetCard(ctx context.Context, modelID string) (Card, error) {
	info, err := c.fetchModelInfo(ctx, modelID, "")
	if err != nil {
		return Card{}, err
	}

	card := Card{}
	if info.CardData != nil {
		card.License = info.CardData.License
		card.LicenseName = info.CardData.LicenseName
		card.LicenseLink = info.CardData.LicenseLink
		card.Tags = info.CardData.Tags
	}

	readme, err := c.get(ctx, fmt.Sprintf("%s/%s/resolve/main/README.md", c.baseURL, modelID))
	if err != nil {
		if errors.Is(err, ErrNotFound) && info.CardData == nil {
			return Card{}, ErrNotFound
		}
	} else {
		card.Text = stripFrontMatter(string(readme))
	}

	return card, nil
}

func (c *client) GetSafetensorsMetadata(ctx context.Context, modelID string) (*SafetensorsMetadata, error) {
	info, err := c.fetchModelInfo(ctx, modelID, "")
	if err != nil {
		return nil, err
	}
	if info.Safetensors == nil {
		return nil, nil
	}

	return &SafetensorsMetadata{
		ParameterCounts: info.Safetensors.Parameters,
		Total:           info.Safetensors.Total,
	}, nil
}

// stripFrontMatter drops the YAML metadata block so card length checks only
// count the human-written body.
func stripFrontMatter(text string) string {
	const marker = "---"
	if !strings.HasPrefix(text, marker) {
		return text
	}
	rest := text[len(marker):]
	if end := strings.Index(rest, "\n"+marker); end >= 0 {
		body := rest[end+len(marker)+1:]

		return strings.TrimLeft(body, "-\n")
	}

	return text
}
