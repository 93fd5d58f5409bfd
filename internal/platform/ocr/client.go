// Package ocr calls the receipt scraping service that turns a receipt
// image into structured line items.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
)

// Client is an HTTP client for the OCR service.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an OCR client for the given service endpoint. If logger
// is nil, the default logger is used.
func NewClient(endpoint, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger.With(slog.String("component", "ocr_client")),
	}
}

type scrapeRequest struct {
	URL       string `json:"url"`
	ReceiptID int64  `json:"receiptId"`
}

type scrapeResponse struct {
	Data []domain.ScrapedItem `json:"data"`
}

// Scrape submits a receipt image URL for extraction and returns the line
// items the service found. Any non-2xx status is an error.
func (c *Client) Scrape(ctx context.Context, url string, receiptID int64) ([]domain.ScrapedItem, error) {
	body, err := json.Marshal(scrapeRequest{URL: url, ReceiptID: receiptID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/ocr", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("scrape request returned status %d", resp.StatusCode)
	}

	var decoded scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode scrape response: %w", err)
	}

	c.logger.Debug("receipt scraped",
		"receipt_id", receiptID,
		"item_count", len(decoded.Data))
	return decoded.Data, nil
}
