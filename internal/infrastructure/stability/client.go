// Package stability calls the Stability AI text-to-image REST API.
package stability

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultURL = "https://api.stability.ai/v1/generation/stable-diffusion-xl-1024-v1-0/text-to-image"

	cfgScale     = 7
	maxErrorBody = 200
)

var ErrNoArtifact = errors.New("invalid response format from API")

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stability api %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) UpstreamMessage() string { return e.Message }
func (e *APIError) UpstreamBody() string    { return e.Body }

// Client has no timeout of its own; the caller's context bounds each call.
type Client struct {
	HTTP   *http.Client
	APIKey string
	URL    string
}

func NewClient(apiKey, url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{HTTP: &http.Client{}, APIKey: apiKey, URL: url}
}

func (c *Client) Configured() bool { return c != nil && c.APIKey != "" }

type textPrompt struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

type generateRequest struct {
	TextPrompts []textPrompt `json:"text_prompts"`
	CfgScale    int          `json:"cfg_scale"`
	Height      int          `json:"height"`
	Width       int          `json:"width"`
	Steps       int          `json:"steps"`
	Samples     int          `json:"samples"`
}

type generateResponse struct {
	Artifacts []struct {
		Base64       string `json:"base64"`
		FinishReason string `json:"finishReason"`
	} `json:"artifacts"`
}

// TextToImage returns the decoded PNG bytes of the first artifact.
func (c *Client) TextToImage(ctx context.Context, prompt string, width, height, steps int) ([]byte, error) {
	body, err := json.Marshal(generateRequest{
		TextPrompts: []textPrompt{{Text: prompt, Weight: 1}},
		CfgScale:    cfgScale,
		Height:      height,
		Width:       width,
		Steps:       steps,
		Samples:     1,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, newAPIError(resp.StatusCode, raw)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode stability response: %w", err)
	}
	if len(out.Artifacts) == 0 || out.Artifacts[0].Base64 == "" {
		return nil, ErrNoArtifact
	}
	png, err := base64.StdEncoding.DecodeString(out.Artifacts[0].Base64)
	if err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return png, nil
}

func newAPIError(status int, raw []byte) *APIError {
	text := string(raw)
	e := &APIError{StatusCode: status, Message: "Failed to generate image", Body: text}
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &parsed) == nil {
		switch {
		case parsed.Message != "":
			e.Message = parsed.Message
		case parsed.Error != "":
			e.Message = parsed.Error
		}
		return e
	}
	if t := strings.TrimSpace(text); t != "" {
		if len(t) > maxErrorBody {
			t = t[:maxErrorBody]
		}
		e.Message = t
	}
	return e
}
