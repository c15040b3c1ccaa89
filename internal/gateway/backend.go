package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIRoot is prefixed to every request path.
const APIRoot = "/api/v1"

const maxResponseBytes = 8 << 20

// Request is one call against the marketplace API. Path is relative to APIRoot
// and may carry a query string.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

type Response struct {
	Status int
	Body   []byte
}

// Backend carries requests to an implementation of the API.
type Backend interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// HTTPBackend talks to a remote server.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

func NewHTTPBackend(baseURL string, timeout time.Duration) *HTTPBackend {
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (b *HTTPBackend) Do(ctx context.Context, req Request) (Response, error) {
	httpReq, err := newHTTPRequest(ctx, b.baseURL, req)
	if err != nil {
		return Response{}, err
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	return Response{Status: resp.StatusCode, Body: body}, nil
}

func newHTTPRequest(ctx context.Context, baseURL string, req Request) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, baseURL+APIRoot+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	return httpReq, nil
}
