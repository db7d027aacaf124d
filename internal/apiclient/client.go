// Package apiclient is a thin client for the resource API. Every call maps to
// one endpoint; failures come back as *RequestError and are never retried.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rgpvpanel/console/internal/model"
)

// Client issues requests against BaseURL.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New constructs a Client. A nil httpClient uses http.DefaultClient and a nil
// logger discards output.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     logger,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (string, error) {
	var out loginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/admin/login", "", creds, &out); err != nil {
		return "", &AuthError{Err: err}
	}
	if out.Token == "" {
		return "", &AuthError{Err: errors.New("response carried no token")}
	}
	return out.Token, nil
}

// ListResources fetches every resource in server order.
func (c *Client) ListResources(ctx context.Context) ([]model.Resource, error) {
	var out []model.Resource
	if err := c.do(ctx, "list resources", http.MethodGet, "/api/resources", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateResource posts a new resource.
func (c *Client) CreateResource(ctx context.Context, token string, form model.ResourceForm) error {
	return c.do(ctx, "create resource", http.MethodPost, "/api/resources", token, form.Payload(), nil)
}

// UpdateResource replaces the fields of resource id.
func (c *Client) UpdateResource(ctx context.Context, token, id string, form model.ResourceForm) error {
	return c.do(ctx, "update resource", http.MethodPut, "/api/resources/"+url.PathEscape(id), token, form.Payload(), nil)
}

// DeleteResource removes resource id.
func (c *Client) DeleteResource(ctx context.Context, token, id string) error {
	return c.do(ctx, "delete resource", http.MethodDelete, "/api/resources/"+url.PathEscape(id), token, nil, nil)
}

// ListVideos fetches every video in server order.
func (c *Client) ListVideos(ctx context.Context) ([]model.Video, error) {
	var out []model.Video
	if err := c.do(ctx, "list videos", http.MethodGet, "/api/videos", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateVideo posts a new video.
func (c *Client) CreateVideo(ctx context.Context, token string, form model.VideoForm) error {
	return c.do(ctx, "create video", http.MethodPost, "/api/videos", token, form, nil)
}

// UpdateVideo replaces the fields of video id.
func (c *Client) UpdateVideo(ctx context.Context, token, id string, form model.VideoForm) error {
	return c.do(ctx, "update video", http.MethodPut, "/api/videos/"+url.PathEscape(id), token, form, nil)
}

// DeleteVideo removes video id.
func (c *Client) DeleteVideo(ctx context.Context, token, id string) error {
	return c.do(ctx, "delete video", http.MethodDelete, "/api/videos/"+url.PathEscape(id), token, nil, nil)
}

// ListUsers fetches the registered users.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := c.do(ctx, "list users", http.MethodGet, "/api/users", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendNotification broadcasts n to app users.
func (c *Client) SendNotification(ctx context.Context, token string, n model.Notification) error {
	return c.do(ctx, "send notification", http.MethodPost, "/api/notifications", token, n, nil)
}

func (c *Client) do(ctx context.Context, op, method, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &RequestError{Op: op, Err: fmt.Errorf("marshal payload: %w", err)}
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &RequestError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("op", op), zap.String("request_id", reqID), zap.Error(err))
		return &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.log.Debug("request done",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", reqID))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Message: serverMessage(data)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// serverMessage pulls a human readable message out of an error body.
func serverMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
