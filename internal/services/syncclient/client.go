// Package syncclient talks to the sync server: profile push/pull plus the
// account endpoints used to obtain an authenticated identity.
package syncclient

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
	"sync"
	"time"

	"github.com/syslvlup/syslvlup/internal/api/apierr"
	"github.com/syslvlup/syslvlup/internal/api/request"
	"github.com/syslvlup/syslvlup/internal/api/response"
	"github.com/syslvlup/syslvlup/internal/model"
)

// DefaultTimeout bounds every request made by the client
const DefaultTimeout = 10 * time.Second

// ProfileKey is the top-level key the profile lives under in a sync payload
const ProfileKey = "gameData"

// ErrNotFound means the server has no data for the id yet. It is not a SyncError.
var ErrNotFound = errors.New("no remote data for user")

// SyncError reports a transport failure or an error status from the server
type SyncError struct {
	Op         string
	StatusCode int // 0 for transport failures
	Code       string
	Err        error
}

func (e *SyncError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: HTTP %d %s: %v", e.Op, e.StatusCode, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Snapshot is the remote state returned by Pull
type Snapshot struct {
	// Profile is the decoded gameData object, nil when the payload has none
	Profile *model.Profile
	// Fields are the raw top-level keys of gameData, for ProfileStore.Merge
	Fields      map[string]json.RawMessage
	LastUpdated time.Time
}

// Client is an HTTP client for the sync server
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a client for the server at baseURL
func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: DefaultTimeout})
}

// NewWithHTTPClient creates a client using the given http.Client
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SetToken sets the bearer token sent with every request
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Pull fetches the remote payload for id
func (c *Client) Pull(ctx context.Context, id string) (*Snapshot, error) {
	var body response.UserData
	status, err := c.do(ctx, "pull", http.MethodGet, "/api/user/"+url.PathEscape(id), nil, &body)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	snap := &Snapshot{
		Fields:      map[string]json.RawMessage{},
		LastUpdated: body.LastUpdated,
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(body.LocalStorage, &top); err != nil {
		return nil, &SyncError{Op: "pull", StatusCode: status, Err: fmt.Errorf("decode payload: %w", err)}
	}
	raw, ok := top[ProfileKey]
	if !ok || string(raw) == "null" {
		return snap, nil
	}

	if err := json.Unmarshal(raw, &snap.Fields); err != nil {
		return nil, &SyncError{Op: "pull", StatusCode: status, Err: fmt.Errorf("decode %s: %w", ProfileKey, err)}
	}
	var p model.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &SyncError{Op: "pull", StatusCode: status, Err: fmt.Errorf("decode %s: %w", ProfileKey, err)}
	}
	p.EnsureMaps()
	snap.Profile = &p

	return snap, nil
}

// Push uploads p as the remote payload for id. The profile is copied and
// encoded before any network I/O, so later mutations by the caller are not sent.
func (c *Client) Push(ctx context.Context, id string, p *model.Profile) error {
	if p == nil {
		return &SyncError{Op: "push", Err: errors.New("nil profile")}
	}
	payload, err := EncodePayload(p)
	if err != nil {
		return &SyncError{Op: "push", Err: err}
	}

	req := request.SyncRequest{UserID: id, LocalStorageData: payload}
	_, err = c.do(ctx, "push", http.MethodPost, "/api/sync", req, nil)
	return err
}

// EncodePayload encodes a copy of p as a sync payload
func EncodePayload(p *model.Profile) (json.RawMessage, error) {
	data, err := json.Marshal(map[string]*model.Profile{ProfileKey: p.Clone()})
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return data, nil
}

// Register creates an account
func (c *Client) Register(ctx context.Context, email, password string) (*response.AuthResponse, error) {
	var out response.AuthResponse
	_, err := c.do(ctx, "register", http.MethodPost, "/api/register", request.CredentialsRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login signs in with email and password
func (c *Client) Login(ctx context.Context, email, password string) (*response.AuthResponse, error) {
	var out response.AuthResponse
	_, err := c.do(ctx, "login", http.MethodPost, "/api/login", request.CredentialsRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify checks the client's token with the server
func (c *Client) Verify(ctx context.Context) (*response.VerifyResponse, error) {
	var out response.VerifyResponse
	if _, err := c.do(ctx, "verify", http.MethodGet, "/api/verify", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDeviceLink asks the server for a link code for the signed-in user
func (c *Client) CreateDeviceLink(ctx context.Context) (*response.DeviceLink, error) {
	var out response.DeviceLink
	if _, err := c.do(ctx, "device-link", http.MethodPost, "/api/device-link", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RedeemDeviceLink exchanges a link code for a session
func (c *Client) RedeemDeviceLink(ctx context.Context, code string) (*response.AuthResponse, error) {
	var out response.AuthResponse
	_, err := c.do(ctx, "redeem", http.MethodPost, "/api/device-link/redeem", request.RedeemLinkRequest{Code: code}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the server is up
func (c *Client) Health(ctx context.Context) (*response.Health, error) {
	var out response.Health
	if _, err := c.do(ctx, "health", http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs a request and decodes the response into result.
// The returned status is 0 when no response was received.
func (c *Client) do(ctx context.Context, op, method, path string, body, result any) (int, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, &SyncError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, &SyncError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &SyncError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, &SyncError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		var errResp apierr.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return resp.StatusCode, &SyncError{Op: op, StatusCode: resp.StatusCode, Code: errResp.Code, Err: errors.New(errResp.Error)}
		}
		return resp.StatusCode, &SyncError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(respBody)))}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return resp.StatusCode, &SyncError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("parse response: %w", err)}
		}
	}
	return resp.StatusCode, nil
}
