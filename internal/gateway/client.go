// Package gateway is the client's single entry point to the marketplace API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultNearbyRadius is used when NearbyProviders gets no radius.
const DefaultNearbyRadius = 5000

// RequestIDHeader carries a per-call id the server echoes and logs.
const RequestIDHeader = "X-Request-Id"

// TokenSource yields the bearer token for the current session, or "".
type TokenSource interface {
	Token() string
}

// Client exposes one method per API operation. Loading and Err describe the
// most recently issued call; concurrent calls overwrite each other's state.
type Client struct {
	backend Backend
	tokens  TokenSource
	log     zerolog.Logger

	mu      sync.Mutex
	loading bool
	err     error
}

func New(backend Backend, tokens TokenSource, log zerolog.Logger) *Client {
	return &Client{backend: backend, tokens: tokens, log: log}
}

// SetTokenSource swaps the token source; used when the session is built after the client.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = tokens
}

func (c *Client) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Client) begin() TokenSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = true
	c.err = nil
	return c.tokens
}

func (c *Client) finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.err = err
}

func (c *Client) call(ctx context.Context, method, path string, payload any) (Body, error) {
	var raw []byte
	if payload != nil {
		var err error
		if raw, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
	}
	return c.send(ctx, Request{
		Method: method,
		Path:   path,
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   raw,
	})
}

func (c *Client) send(ctx context.Context, req Request) (body Body, err error) {
	tokens := c.begin()
	defer func() { c.finish(err) }()

	if req.Header == nil {
		req.Header = http.Header{}
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	if tokens != nil {
		if token := tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.backend.Do(ctx, req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", req.Method).Str("path", req.Path).Str("request_id", requestID).Msg("request failed")
		return nil, err
	}
	body = Body(resp.Body)
	if resp.Status < 200 || resp.Status > 299 {
		apiErr := newAPIError(resp.Status, body)
		c.log.Debug().
			Int("status", resp.Status).
			Str("path", req.Path).
			Str("request_id", requestID).
			Str("message", apiErr.Message).
			Msg("api error")
		return nil, apiErr
	}
	return body, nil
}

type RegisterRequest struct {
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (Body, error) {
	return c.call(ctx, http.MethodPost, "/auth/register", req)
}

func (c *Client) Authenticate(ctx context.Context, phoneNumber string) (Body, error) {
	return c.call(ctx, http.MethodPost, "/auth/authenticate", map[string]string{"phoneNumber": phoneNumber})
}

// Me returns the server's view of the current user.
func (c *Client) Me(ctx context.Context) (Body, error) {
	return c.call(ctx, http.MethodGet, "/auth/me", nil)
}

type CreateJobRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	Budget      float64 `json:"budget"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

func (c *Client) CreateJob(ctx context.Context, req CreateJobRequest) (Body, error) {
	return c.call(ctx, http.MethodPost, "/jobs", req)
}

// ListJobs never fails: any error is recorded in Err and an empty list is
// returned in its place.
func (c *Client) ListJobs(ctx context.Context) (Body, error) {
	body, err := c.call(ctx, http.MethodGet, "/jobs", nil)
	if err != nil {
		c.log.Warn().Err(err).Msg("jobs endpoint not available")
		return Body(`{"success":true,"data":[]}`), nil
	}
	return body, nil
}

func (c *Client) GetJob(ctx context.Context, jobID int64) (Body, error) {
	return c.call(ctx, http.MethodGet, "/jobs/"+id(jobID), nil)
}

func (c *Client) ListBids(ctx context.Context, jobID int64) (Body, error) {
	return c.call(ctx, http.MethodGet, "/jobs/"+id(jobID)+"/bids", nil)
}

type PlaceBidRequest struct {
	Amount  float64 `json:"amount"`
	Message string  `json:"message"`
}

func (c *Client) PlaceBid(ctx context.Context, jobID int64, req PlaceBidRequest) (Body, error) {
	return c.call(ctx, http.MethodPost, "/jobs/"+id(jobID)+"/bids", req)
}

func (c *Client) AcceptBid(ctx context.Context, jobID, bidID int64) (Body, error) {
	return c.call(ctx, http.MethodPost, "/jobs/"+id(jobID)+"/bids/"+id(bidID)+"/accept", nil)
}

func (c *Client) UpdateJobStatus(ctx context.Context, jobID int64, status string) (Body, error) {
	return c.call(ctx, http.MethodPost, "/jobs/"+id(jobID)+"/status", map[string]string{"status": status})
}

func (c *Client) UpdateLocation(ctx context.Context, lat, lon float64) (Body, error) {
	q := url.Values{"lat": {coord(lat)}, "lon": {coord(lon)}}
	return c.call(ctx, http.MethodPost, "/geo/update?"+q.Encode(), nil)
}

func (c *Client) NearbyProviders(ctx context.Context, lat, lon, radius float64) (Body, error) {
	if radius <= 0 {
		radius = DefaultNearbyRadius
	}
	q := url.Values{"lat": {coord(lat)}, "lon": {coord(lon)}, "radius": {coord(radius)}}
	return c.call(ctx, http.MethodGet, "/geo/nearby?"+q.Encode(), nil)
}

func (c *Client) CommunityFeed(ctx context.Context) (Body, error) {
	return c.call(ctx, http.MethodGet, "/community/feed", nil)
}

type StoryRequest struct {
	MediaURL string `json:"mediaUrl"`
	Caption  string `json:"caption"`
}

func (c *Client) PostStory(ctx context.Context, req StoryRequest) (Body, error) {
	return c.call(ctx, http.MethodPost, "/community/stories", req)
}

// UploadMedia sends a file as multipart form data and returns the stored media.
func (c *Client) UploadMedia(ctx context.Context, filename string, r io.Reader) (Body, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return c.send(ctx, Request{
		Method: http.MethodPost,
		Path:   "/media/upload",
		Header: http.Header{"Content-Type": {mw.FormDataContentType()}},
		Body:   buf.Bytes(),
	})
}

func (c *Client) ChatHistory(ctx context.Context, jobID int64) (Body, error) {
	return c.call(ctx, http.MethodGet, "/chat/history/"+id(jobID), nil)
}

type MessageRequest struct {
	SenderID   int64  `json:"senderId"`
	ReceiverID int64  `json:"receiverId"`
	JobID      int64  `json:"jobId"`
	Content    string `json:"content"`
}

func (c *Client) SendMessage(ctx context.Context, req MessageRequest) (Body, error) {
	return c.call(ctx, http.MethodPost, "/chat/send", req)
}

type ReviewRequest struct {
	JobID    int64   `json:"jobId"`
	Rating   int     `json:"rating"`
	Comment  string  `json:"comment"`
	PhotoURL *string `json:"photoUrl"`
}

func (c *Client) CreateReview(ctx context.Context, req ReviewRequest) (Body, error) {
	return c.call(ctx, http.MethodPost, "/reviews", req)
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func coord(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
