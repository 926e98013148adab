// Package extraction calls the document extraction backend that turns
// uploaded NF-e XML, PDF and spreadsheet files into structured invoice
// payloads. The backend authenticates callers with a static shared
// secret header.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"stockpro/internal/core/apperror"
	"stockpro/internal/domain/trade"
	"stockpro/pkg/logger"
)

// secretHeader carries the shared secret on every request.
const secretHeader = "X-Extraction-Secret"

// Config configures the extraction backend client.
type Config struct {
	URL          string
	SharedSecret string
	Timeout      time.Duration
}

// Client uploads files to the extraction backend.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates an extraction client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// Extract uploads one file and returns the extracted invoice payloads.
// A single spreadsheet may carry several invoices, so the backend
// always answers with a list.
func (c *Client) Extract(ctx context.Context, fileName string, file io.Reader) ([]trade.NfeExtract, error) {
	if c.cfg.URL == "" {
		return nil, apperror.NewValidation("extraction backend is not configured")
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("create multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, &body)
	if err != nil {
		return nil, fmt.Errorf("build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set(secretHeader, c.cfg.SharedSecret)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call extraction backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Warn(ctx, "extraction backend rejected upload",
			"status", resp.StatusCode,
			"file", fileName)
		return nil, decodeBackendError(resp.StatusCode, payload)
	}

	extracts, err := decodeExtracts(resp.Body)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "file extracted",
		"file", fileName,
		"invoices", len(extracts),
		"duration_ms", time.Since(start).Milliseconds())
	return extracts, nil
}

// decodeExtracts accepts both a single invoice object and a list, the
// backend answers with an object for XML uploads and a list for
// spreadsheets.
func decodeExtracts(r io.Reader) ([]trade.NfeExtract, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read extraction response: %w", err)
	}

	var list []trade.NfeExtract
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var single trade.NfeExtract
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}
	return []trade.NfeExtract{single}, nil
}

func decodeBackendError(status int, payload []byte) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := "extraction failed"
	if err := json.Unmarshal(payload, &body); err == nil && body.Error != "" {
		msg = body.Error
	}

	if status >= 400 && status < 500 {
		return apperror.NewValidation(msg)
	}
	return fmt.Errorf("extraction backend error (status %d): %s", status, msg)
}
