package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// ModelResult is one model's verdict. Results keep the JSON key order of the
// upstream response so ties resolve to the first model seen.
type ModelResult struct {
	Model      string
	Prediction bool
	Precentage float64
}

// Gateway asks the external prediction service to score a submission.
type Gateway interface {
	Predict(ctx context.Context, in *Input) ([]ModelResult, error)
}

// HTTPGateway is a thin resty client over the prediction endpoint. No retry:
// a submission either scores in one round trip or fails whole.
type HTTPGateway struct {
	client *resty.Client
	url    string
	logger zerolog.Logger
}

func NewHTTPGateway(url string, timeout time.Duration, logger zerolog.Logger) *HTTPGateway {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &HTTPGateway{client: client, url: url, logger: logger}
}

func (g *HTTPGateway) Predict(ctx context.Context, in *Input) ([]ModelResult, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(in.Payload()).
		Post(g.url)
	if err != nil {
		g.logger.Warn().Err(err).Str("url", g.url).Msg("prediction request failed")
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if !resp.IsSuccess() {
		g.logger.Warn().Int("status", resp.StatusCode()).Str("url", g.url).Msg("prediction request rejected")
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode())
	}

	results, err := decodeResults(resp.Body())
	if err != nil {
		g.logger.Warn().Err(err).Msg("prediction response malformed")
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return results, nil
}

type modelVerdict struct {
	Prediction bool    `json:"prediction"`
	Precentage float64 `json:"precentage"`
}

// decodeResults walks the response object token by token so the original key
// order survives (a plain map would shuffle it and break tie-breaking).
func decodeResults(body []byte) ([]ModelResult, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("decode response: expected object, got %v", tok)
	}

	var results []ModelResult
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		model, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("decode response: non-string key %v", keyTok)
		}

		var v modelVerdict
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode result for %s: %w", model, err)
		}
		results = append(results, ModelResult{
			Model:      model,
			Prediction: v.Prediction,
			Precentage: v.Precentage,
		})
	}
	return results, nil
}
