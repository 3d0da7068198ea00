// Package ocr is the HTTP client for the external OCR engine. Recognition
// runs out of process; this client only ships image bytes and parses the
// engine's response.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/docnamer/internal/core/domain"
	"github.com/kirillkom/docnamer/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// WithExecutor attaches a resilience executor; calls then retry on transient
// engine failures and trip the breaker on repeated ones.
func (c *Client) WithExecutor(executor *resilience.Executor) *Client {
	c.executor = executor
	return c
}

type recognizeRequest struct {
	Filename string `json:"filename"`
	Image    string `json:"image"`
}

type recognizeResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Recognize submits one image and returns the recognized text and detected
// language. An engine error is returned as-is; an empty recognition result
// is not an error.
func (c *Client) Recognize(ctx context.Context, filename string, image []byte) (domain.ExtractionResult, error) {
	request := recognizeRequest{
		Filename: filename,
		Image:    base64.StdEncoding.EncodeToString(image),
	}

	var response recognizeResponse
	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/v1/recognize", request, &response, "recognize")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ocr.recognize", call, classifyOCRError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.ExtractionResult{}, wrapTemporaryIfNeeded("ocr recognize", err)
	}

	return domain.ExtractionResult{
		Text:     strings.TrimSpace(response.Text),
		Language: strings.TrimSpace(response.Language),
	}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ocr %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
