// Package ml_client wraps the external inference service. It translates
// transport failures into the typed errors the rest of the core propagates
// unchanged; retry policy belongs to the caller's transport layer, never
// here.
package ml_client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"shieldbackend/internal/apperr"
	"shieldbackend/internal/models"
)

// Client is a client for the ML model service API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClassifyRequest represents a single text classification request.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// URLScanRequest represents a URL classification request.
type URLScanRequest struct {
	URL string `json:"url"`
}

// PredictionDetails carries optional explainability data.
type PredictionDetails struct {
	Features models.FeatureFlags `json:"features"`
}

// Prediction represents the classification result.
type Prediction struct {
	Confidence      float64            `json:"confidence"`
	Prediction      string             `json:"prediction"`
	IsPhishing      *bool              `json:"is_phishing,omitempty"`
	TranscribedText string             `json:"transcribed_text,omitempty"`
	Details         *PredictionDetails `json:"details,omitempty"`
}

// Features returns the feature flags, zero-valued when the service sent none.
func (p *Prediction) Features() models.FeatureFlags {
	if p.Details == nil {
		return models.FeatureFlags{}
	}
	return p.Details.Features
}

// NewClient creates a new ML service client with a bounded timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ClassifyText classifies a single text message.
func (c *Client) ClassifyText(ctx context.Context, text string) (*Prediction, error) {
	return c.postJSON(ctx, "/api/v1/predict/text", ClassifyRequest{Text: text})
}

// ClassifyURL classifies a URL for phishing.
func (c *Client) ClassifyURL(ctx context.Context, url string) (*Prediction, error) {
	return c.postJSON(ctx, "/api/v1/predict/url", URLScanRequest{URL: url})
}

// ClassifyVoice uploads an audio sample for transcription and scam
// classification.
func (c *Client) ClassifyVoice(ctx context.Context, audio []byte, filename string) (*Prediction, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write audio payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/predict/voice", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

func (c *Client) postJSON(ctx context.Context, path string, reqBody any) (*Prediction, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Prediction, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, translateTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, translateStatusError(resp)
	}

	var result Prediction
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, err, "classifier returned an unreadable response")
	}
	return &result, nil
}

func translateTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperr.Wrap(apperr.KindUpstreamTimeout, err, "request timed out")
	}
	return apperr.Wrap(apperr.KindUpstreamUnavailable, err, "service temporarily unavailable")
}

func translateStatusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := upstreamMessage(body)

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return apperr.New(apperr.KindUpstreamClient, "classifier rejected the request: %s", msg)
	}
	return apperr.New(apperr.KindUpstreamUnavailable, "service temporarily unavailable")
}

// upstreamMessage pulls a human-readable message out of an error body
// without ever exposing a raw stack trace.
func upstreamMessage(body []byte) string {
	var parsed struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		for _, m := range []string{parsed.Detail, parsed.Error, parsed.Message} {
			if m != "" {
				return m
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "bad request"
	}
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
