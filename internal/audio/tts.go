package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"leads_dashboard_backend/platform/config"
)

const ttsBaseURL = "https://api.elevenlabs.io"

// TTSClient synthesizes speech from text via the ElevenLabs API.
type TTSClient struct {
	apiKey     string
	voiceID    string
	modelID    string
	baseURL    string
	httpClient *http.Client
}

// NewTTSClient builds the text-to-speech client. Synthesis of a ~1 minute
// script takes a while, hence the generous timeout.
func NewTTSClient(cfg config.TTSConfig) *TTSClient {
	return &TTSClient{
		apiKey:     cfg.GetTTSAPIKey(),
		voiceID:    cfg.GetTTSVoiceID(),
		modelID:    cfg.GetTTSModelID(),
		baseURL:    ttsBaseURL,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Enabled reports whether the API key is configured.
func (c *TTSClient) Enabled() bool {
	return c.apiKey != ""
}

// Synthesize converts the script to MP3 audio bytes.
func (c *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("text-to-speech API key not configured")
	}

	body, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": c.modelID,
		"voice_settings": map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("text-to-speech returned status %d: %s", resp.StatusCode, detail)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("text-to-speech returned empty audio")
	}

	return audio, nil
}
