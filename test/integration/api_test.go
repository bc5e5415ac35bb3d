//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiResponse is a response with its body already read.
type apiResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the body into out.
func (r apiResponse) Decode(out any) error {
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode %d response %s: %w", r.Status, r.Body, err)
	}

	return nil
}

// apiClient calls the quote API as one user.
type apiClient struct {
	baseURL string
	user    string
	http    *http.Client
}

func newAPIClient(baseURL, user string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		user:    user,
		http: &http.Client{
			Timeout: 10 * time.Second,
			// Redirects are asserted, not followed.
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}
}

// as returns a client for another user on the same service.
func (c *apiClient) as(user string) *apiClient {
	clone := *c
	clone.user = user

	return &clone
}

func (c *apiClient) do(ctx context.Context, method, path string, body any) (apiResponse, error) {
	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apiResponse{}, fmt.Errorf("encode request: %w", err)
		}

		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apiResponse{}, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.user != "" {
		req.Header.Set("X-User-ID", c.user)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apiResponse{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiResponse{}, fmt.Errorf("read response body: %w", err)
	}

	return apiResponse{Status: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}

// Minimal response shapes; the tests only read what they assert on.

type draftBody struct {
	ID          string `json:"id"`
	QuoteNumber string `json:"quote_number"`
	Items       []struct {
		ID    string `json:"id"`
		Total string `json:"total"`
	} `json:"items"`
	Schedule []struct {
		ID string `json:"id"`
	} `json:"schedule"`
	Totals totalsBody `json:"totals"`
	Saved  *struct {
		QuoteID    string `json:"quote_id"`
		RevisionID string `json:"revision_id"`
		ClientLink string `json:"client_link"`
	} `json:"saved"`
}

type totalsBody struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

type saveBody struct {
	QuoteID       string     `json:"quote_id"`
	RevisionID    string     `json:"revision_id"`
	QuoteCreated  bool       `json:"quote_created"`
	ClientCreated bool       `json:"client_created"`
	ItemCount     int        `json:"item_count"`
	Totals        totalsBody `json:"totals"`
	Message       string     `json:"message"`
}

type clientViewBody struct {
	QuoteNumber string `json:"quote_number"`
	Status      string `json:"status"`
	Items       []struct {
		Description string `json:"description"`
	} `json:"items"`
	Totals    totalsBody `json:"totals"`
	ViewCount int        `json:"view_count"`
	Documents []string   `json:"documents"`
}
