package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext carries HTTP state between steps of one scenario.
type TestContext struct {
	BaseURL string
	client  *http.Client

	token      string
	lastStatus int
	lastBody   []byte
	lastHeader http.Header
}

// NewTestContext returns a context pointed at baseURL.
func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.token = ""
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastHeader = nil
}

// SetVisitorToken makes subsequent requests authenticate as that visitor.
func (tc *TestContext) SetVisitorToken(token string) { tc.token = token }

func (tc *TestContext) GetVisitorToken() string { return tc.token }

func (tc *TestContext) GetLastResponseStatus() int { return tc.lastStatus }

func (tc *TestContext) GetLastResponseBody() []byte { return tc.lastBody }

func (tc *TestContext) GetLastResponseHeader(name string) string {
	if tc.lastHeader == nil {
		return ""
	}
	return tc.lastHeader.Get(name)
}

// GET sends a GET request with the visitor token when one is set.
func (tc *TestContext) GET(ctx context.Context, path string) error {
	return tc.do(ctx, http.MethodGet, path, nil)
}

// POST sends body as JSON. A nil body sends no payload.
func (tc *TestContext) POST(ctx context.Context, path string, body any) error {
	return tc.do(ctx, http.MethodPost, path, body)
}

// DELETE sends a DELETE request.
func (tc *TestContext) DELETE(ctx context.Context, path string) error {
	return tc.do(ctx, http.MethodDelete, path, nil)
}

func (tc *TestContext) do(ctx context.Context, method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, tc.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastHeader = resp.Header
	tc.lastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	return nil
}

// GetResponseField reads a dotted path such as "validation.isValid" from the
// last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var doc any
	if err := json.Unmarshal(tc.lastBody, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	current := doc
	for _, part := range strings.Split(field, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		current, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not found in response", field)
		}
	}
	return current, nil
}

// DecodeResponse unmarshals the last response body into dst.
func (tc *TestContext) DecodeResponse(dst any) error {
	if err := json.Unmarshal(tc.lastBody, dst); err != nil {
		return fmt.Errorf("decode response: %w (body: %s)", err, tc.lastBody)
	}
	return nil
}
