package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultModel = "@cf/deepgram/aura-1"

// CloudflareConfig contains credentials for the Workers AI text-to-speech API.
type CloudflareConfig struct {
	AccountID string
	APIToken  string
	Model     string
	Timeout   time.Duration
}

// CloudflareSynthesizer implements Synthesizer against the Cloudflare Workers AI API.
type CloudflareSynthesizer struct {
	client   *http.Client
	endpoint string
	token    string
	logger   zerolog.Logger
}

// NewCloudflareSynthesizer constructs a synthesizer instance.
func NewCloudflareSynthesizer(cfg CloudflareConfig, logger zerolog.Logger) (*CloudflareSynthesizer, error) {
	if cfg.AccountID == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("cloudflare credentials must be provided")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &CloudflareSynthesizer{
		client:   &http.Client{Timeout: timeout},
		endpoint: fmt.Sprintf("https://api.cloudflare.com/client/v4/accounts/%s/ai/run/%s", cfg.AccountID, model),
		token:    cfg.APIToken,
		logger:   logger.With().Str("component", "cloudflare_tts").Logger(),
	}, nil
}

// Synthesize requests narration audio for the script and returns the raw bytes.
func (s *CloudflareSynthesizer) Synthesize(ctx context.Context, script string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"text": script})
	if err != nil {
		return nil, fmt.Errorf("encode tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("tts request returned status %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}

	if len(audio) == 0 {
		return nil, fmt.Errorf("tts returned an empty audio buffer")
	}

	s.logger.Debug().Int("bytes", len(audio)).Msg("narration audio synthesized")

	return audio, nil
}
