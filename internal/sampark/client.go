package sampark

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"samparkdash/internal/indicators"
)

// Dataset names used as snapshot keys.
const (
	DatasetDistrictWise  = "district-wise"
	DatasetDistrictLevel = "district-level"
	DatasetInsights      = "data-insights"
)

// DefaultSession is the academic session the dashboard queries.
const DefaultSession = "2025-2026"

// SnapshotStore persists raw dataset payloads between runs.
type SnapshotStore interface {
	SaveSnapshot(dataset, scope string, payload []byte, at time.Time) error
	LoadSnapshot(dataset, scope string, maxAge time.Duration) ([]byte, time.Time, error)
}

// Client talks to the Sampark dashboard API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	snapshots   SnapshotStore
	snapshotTTL time.Duration
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default 30s-timeout HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSnapshots serves dataset calls from store while a snapshot is younger
// than ttl, and stores every fresh payload.
func WithSnapshots(store SnapshotStore, ttl time.Duration) Option {
	return func(c *Client) {
		c.snapshots = store
		c.snapshotTTL = ttl
	}
}

// WithLogger sets the logger, slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// User is the profile returned on login. State is the state id used by
// every dataset query.
type User struct {
	Name        string `json:"name"`
	Designation string `json:"designation"`
	State       string `json:"state"`
	District    string `json:"district"`
	Block       string `json:"block"`
	Role        string `json:"role"`
}

// Credentials is a successful OTP validation.
type Credentials struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// OTPResult is the response to an OTP request.
type OTPResult struct {
	NewUser     bool   `json:"newuser"`
	PhoneNumber string `json:"phone_number"`
}

// StateQuery selects the district-wise dataset of a state.
type StateQuery struct {
	StateID string
	Session string
	Des     string
}

func (q StateQuery) values() url.Values {
	v := url.Values{}
	v.Set("state_id", q.StateID)
	v.Set("session", orDefault(q.Session, DefaultSession))
	v.Set("des", q.Des)
	return v
}

// DistrictQuery selects the block-wise dataset of one district.
type DistrictQuery struct {
	StateID    string
	DistrictID string
	Session    string
}

func (q DistrictQuery) values() url.Values {
	v := url.Values{}
	v.Set("state_id", q.StateID)
	v.Set("district_id", q.DistrictID)
	v.Set("session", orDefault(q.Session, DefaultSession))
	return v
}

// InsightsQuery selects the school-wise dataset of one block. Empty ids
// are left out of the request.
type InsightsQuery struct {
	StateID    string
	DistrictID string
	BlockID    string
	Session    string
}

func (q InsightsQuery) values() url.Values {
	v := url.Values{}
	for k, s := range map[string]string{
		"state_id":    q.StateID,
		"district_id": q.DistrictID,
		"block_id":    q.BlockID,
		"session":     orDefault(q.Session, DefaultSession),
	} {
		if s != "" {
			v.Set(k, s)
		}
	}
	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// RequestOTP asks the API to text an OTP to phone.
func (c *Client) RequestOTP(ctx context.Context, phone string) (OTPResult, error) {
	var res OTPResult
	digits, err := NormalizePhone(phone)
	if err != nil {
		return res, err
	}
	req, err := c.newJSONRequest(ctx, "/server/api/getOTP", OTPRequest{PhoneNumber: digits})
	if err != nil {
		return res, err
	}
	data, err := c.do(req, "failed to request OTP")
	if err != nil {
		return res, err
	}
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &res); err != nil {
			return res, fmt.Errorf("failed to parse OTP response: %w", err)
		}
	}
	return res, nil
}

// ValidateOTP exchanges phone and otp for a token and user profile.
func (c *Client) ValidateOTP(ctx context.Context, phone, otp string) (Credentials, error) {
	var creds Credentials
	body := VerifyRequest{PhoneNumber: stripNonDigits(phone), OTP: strings.TrimSpace(otp)}
	if err := Validate(body); err != nil {
		return creds, err
	}
	req, err := c.newJSONRequest(ctx, "/server/api/validateOTP", body)
	if err != nil {
		return creds, err
	}
	env, status, err := c.roundTrip(req)
	if err != nil {
		return creds, err
	}
	if err := env.check(status, "invalid OTP"); err != nil {
		return creds, err
	}

	var data struct {
		Token    string          `json:"token"`
		UserInfo json.RawMessage `json:"userinfo"`
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return creds, fmt.Errorf("failed to parse OTP validation response: %w", err)
		}
	}
	info := bytes.TrimSpace(data.UserInfo)
	if data.Token == "" || len(info) == 0 || info[0] != '{' {
		msg := env.Message
		var s string
		if json.Unmarshal(info, &s) == nil && s != "" {
			msg = s
		}
		return creds, &APIError{Status: status, Code: env.StatusCode, Message: orDefault(msg, "invalid OTP")}
	}
	if err := json.Unmarshal(info, &creds.User); err != nil {
		return creds, fmt.Errorf("failed to parse user info: %w", err)
	}
	creds.Token = data.Token
	return creds, nil
}

// DistrictWise fetches the district-wise leading indicators of a state.
func (c *Client) DistrictWise(ctx context.Context, token string, q StateQuery) (indicators.StateDataset, error) {
	values := q.values()
	return fetchDataset[indicators.StateDataset](ctx, c, DatasetDistrictWise, snapshotScope(values, token), "failed to load state",
		func(ctx context.Context) (*http.Request, error) {
			return c.newRequest(ctx, http.MethodGet, "/server/api/v2/districtWiseLeadingIndicators?"+values.Encode(), nil, token)
		})
}

// DistrictLevel fetches the block-wise leading indicators of a district.
func (c *Client) DistrictLevel(ctx context.Context, token string, q DistrictQuery) (indicators.DistrictDataset, error) {
	values := q.values()
	return fetchDataset[indicators.DistrictDataset](ctx, c, DatasetDistrictLevel, snapshotScope(values, token), "failed to load district",
		func(ctx context.Context) (*http.Request, error) {
			return c.newRequest(ctx, http.MethodGet, "/server/api/v2/districtLevelLeadingIndicators?"+values.Encode(), nil, token)
		})
}

// DataInsights fetches the school-wise indicators of a block.
func (c *Client) DataInsights(ctx context.Context, token string, q InsightsQuery) (indicators.BlockDataset, error) {
	values := q.values()
	return fetchDataset[indicators.BlockDataset](ctx, c, DatasetInsights, snapshotScope(values, token), "failed to load block",
		func(ctx context.Context) (*http.Request, error) {
			req, err := c.newRequest(ctx, http.MethodPost, "/server/api/v2/dataInsights", strings.NewReader(values.Encode()), token)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return req, nil
		})
}

// snapshotScope keys a snapshot by its query and by a hash of the bearer
// token, so a cached payload is only served back to the session that
// fetched it.
func snapshotScope(values url.Values, token string) string {
	if token == "" {
		return values.Encode()
	}
	sum := sha256.Sum256([]byte(token))
	return values.Encode() + "#" + hex.EncodeToString(sum[:8])
}

// fetchDataset serves a fresh snapshot when one exists, otherwise calls the
// API and stores the payload.
func fetchDataset[T any](ctx context.Context, c *Client, dataset, scope, fallback string, build func(context.Context) (*http.Request, error)) (T, error) {
	var out T
	if c.snapshots != nil && c.snapshotTTL > 0 {
		payload, at, err := c.snapshots.LoadSnapshot(dataset, scope, c.snapshotTTL)
		if err == nil {
			if err := json.Unmarshal(payload, &out); err == nil {
				c.logger.Debug("serving dataset from snapshot", "dataset", dataset, "scope", scope, "age", time.Since(at).Round(time.Second).String())
				return out, nil
			}
			c.logger.Warn("discarding unreadable snapshot", "dataset", dataset, "scope", scope)
		}
	}

	req, err := build(ctx)
	if err != nil {
		return out, err
	}
	data, err := c.do(req, fallback)
	if err != nil {
		c.logger.Error("dataset request failed", "dataset", dataset, "scope", scope, "error", err)
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to parse %s response: %w", dataset, err)
	}

	if c.snapshots != nil {
		if err := c.snapshots.SaveSnapshot(dataset, scope, data, time.Now()); err != nil {
			c.logger.Warn("failed to save snapshot", "dataset", dataset, "scope", scope, "error", err)
		}
	}
	return out, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, token string) (*http.Request, error) {
	if c.baseURL == "" {
		return nil, ErrNoBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, path string, body any) (*http.Request, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(b), "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// envelope is the wrapper every API response comes in. Error is a bool on
// most endpoints and a message string on some.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Error      json.RawMessage `json:"error"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
}

func (e envelope) check(status int, fallback string) error {
	msg, failed := "", false
	var flag bool
	var text string
	switch {
	case json.Unmarshal(e.Error, &flag) == nil:
		failed = flag
	case json.Unmarshal(e.Error, &text) == nil && text != "":
		failed, msg = true, text
	}
	if status < 200 || status >= 300 {
		failed = true
	}
	if !failed {
		return nil
	}
	return &APIError{Status: status, Code: e.StatusCode, Message: orDefault(orDefault(msg, e.Message), fallback)}
}

// do sends req and returns the envelope's data.
func (c *Client) do(req *http.Request, fallback string) (json.RawMessage, error) {
	env, status, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}
	if err := env.check(status, fallback); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) roundTrip(req *http.Request) (envelope, int, error) {
	var env envelope
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return env, 0, fmt.Errorf("failed to call %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return env, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "application/json") {
		return env, resp.StatusCode, &ResponseError{
			Status:      resp.StatusCode,
			ContentType: ct,
			Body:        strings.TrimSpace(string(body[:min(len(body), 200)])),
		}
	}

	if err := json.Unmarshal(body, &env); err != nil {
		return env, resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
	}
	return env, resp.StatusCode, nil
}
