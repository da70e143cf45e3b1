// Package client is a thin HTTP client for the rationbook API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"rationbook/internal/models"
)

// APIError carries the server-provided reason for a failed call.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SubmitWeek posts a week plan to the submit endpoint.
func (c *Client) SubmitWeek(ctx context.Context, req models.SubmitRequest) (*models.SubmitResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/rations", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var res models.SubmitResponse
	if err := c.do(httpReq, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// FetchWeek reads the stored plan for (name, weekStart).
func (c *Client) FetchWeek(ctx context.Context, name, weekStart string) (*models.ReadResponse, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("weekStart", weekStart)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/rations?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var res models.ReadResponse
	if err := c.do(httpReq, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Names fetches the namelist, flattened to one name per entry.
func (c *Client) Names(ctx context.Context, reload bool) ([]string, error) {
	u := c.baseURL + "/api/namelist"
	if reload {
		u += "?reload=true"
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var res models.NamelistResponse
	if err := c.do(httpReq, &res); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		if len(row) > 0 && row[0] != "" {
			names = append(names, row[0])
		}
	}
	return names, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
			return &APIError{Status: resp.StatusCode, Message: "request failed"}
		}
		return &APIError{Status: resp.StatusCode, Message: body.Error}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
