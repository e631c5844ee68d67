// Package listings is the client for the external apartment search API.
package listings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/yourusername/realtor-intake-bot/internal/domain/constants"
	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
)

// Client posts filter payloads to the listings API and parses result
// pages. Safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: constants.ListingsRequestTimeout},
	}
}

// searchResponse tolerates both payload shapes the API is known to
// produce: {"items": [...], "count": n} and {"data": [...], "total": n}.
type searchResponse struct {
	Items []entity.Listing `json:"items"`
	Data  []entity.Listing `json:"data"`
	Count int              `json:"count"`
	Total int              `json:"total"`
}

// Search runs one filter query. Returns the page of listings and the
// total number of matches on the server.
func (c *Client) Search(ctx context.Context, filters entity.FilterSet, offset, limit int) ([]entity.Listing, int, error) {
	payload := filters.APIPayload()
	payload["limit"] = limit
	payload["offset"] = offset
	payload["sort"] = "newest"
	if c.apiKey != "" {
		payload["key"] = c.apiKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("listings request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = resp.Status
		}
		return nil, 0, fmt.Errorf("listings api status=%d: %s", resp.StatusCode, msg)
	}

	var out searchResponse
	dec := json.NewDecoder(io.LimitReader(resp.Body, 25<<20))
	if err := dec.Decode(&out); err != nil {
		return nil, 0, fmt.Errorf("decode listings response: %w", err)
	}

	items := out.Items
	if len(items) == 0 {
		items = out.Data
	}
	total := out.Count
	if total == 0 {
		total = out.Total
	}
	if total < len(items) {
		total = len(items)
	}

	log.Printf("[LISTINGS] search offset=%d returned %d of %d", offset, len(items), total)
	return items, total, nil
}
