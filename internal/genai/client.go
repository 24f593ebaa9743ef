package genai

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/config"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/errors"
	commonhttp "github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/http"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/logger"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/metrics"
)

// Client talks to the Gemini generateContent REST API.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxRetries  int
	httpClient  *commonhttp.Client
	logger      logger.Logger
}

func NewClient(cfg config.GenAIConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		httpClient:  commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		logger:      log.WithFields(map[string]interface{}{"component": "genai-client"}),
	}
}

type generateRequest struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends one generateContent call. Transport failures, 429 and 5xx
// responses are retried with exponential backoff up to maxRetries; an
// exhausted budget or an expired context surfaces as a pipeline error code.
func (c *Client) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{Temperature: c.temperature},
	}
	if systemInstruction != "" {
		reqBody.SystemInstruction = &content{Parts: []part{{Text: systemInstruction}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.NewGenerationUnavailableError(fmt.Errorf("marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	started := time.Now()
	defer func() {
		metrics.GenerationDuration.Observe(time.Since(started).Seconds())
	}()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			c.logger.Warn("retrying generation call", map[string]interface{}{
				"attempt": attempt,
				"backoff": backoff.String(),
				"error":   lastErr.Error(),
			})
			select {
			case <-ctx.Done():
				return "", timeoutOrUnavailable(ctx.Err())
			case <-time.After(backoff):
			}
		}

		text, retryable, err := c.doOnce(ctx, url, payload)
		if err == nil {
			return text, nil
		}
		if !retryable {
			return "", err
		}
		lastErr = err
	}

	return "", lastErr
}

// doOnce performs a single HTTP round trip. The second return value reports
// whether the failure is worth another attempt.
func (c *Client) doOnce(ctx context.Context, url string, payload []byte) (string, bool, error) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", false, errors.NewGenerationUnavailableError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, timeoutOrUnavailable(ctxErr)
		}
		var netErr net.Error
		if stderrors.As(err, &netErr) && netErr.Timeout() {
			return "", false, errors.NewGenerationTimeoutError()
		}
		return "", true, errors.NewGenerationUnavailableError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, errors.NewGenerationUnavailableError(fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", true, errors.NewGenerationUnavailableError(fmt.Errorf("rate limit exceeded (429)"))
	case resp.StatusCode >= 500:
		return "", true, errors.NewGenerationUnavailableError(fmt.Errorf("upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	case resp.StatusCode != http.StatusOK:
		return "", false, errors.NewGenerationUnavailableError(fmt.Errorf("upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", false, errors.NewGenerationUnavailableError(fmt.Errorf("parse response: %w", err))
	}
	if genResp.Error != nil {
		return "", false, errors.NewGenerationUnavailableError(fmt.Errorf("upstream error %d: %s", genResp.Error.Code, genResp.Error.Message))
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", false, errors.NewGenerationUnavailableError(fmt.Errorf("no completion returned"))
	}

	var result strings.Builder
	for _, p := range genResp.Candidates[0].Content.Parts {
		result.WriteString(p.Text)
	}
	return strings.TrimSpace(result.String()), false, nil
}

func timeoutOrUnavailable(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewGenerationTimeoutError()
	}
	return errors.NewGenerationUnavailableError(err)
}
