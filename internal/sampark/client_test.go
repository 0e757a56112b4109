package sampark

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samparkdash/internal/indicators"
)

func serveFixture(t *testing.T, name string) http.HandlerFunc {
	t.Helper()
	raw, err := indicators.FixtureJSON(name)
	require.NoError(t, err)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(raw)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type memSnapshots struct {
	mu    sync.Mutex
	saved map[string][]byte
	at    map[string]time.Time
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{saved: map[string][]byte{}, at: map[string]time.Time{}}
}

func (m *memSnapshots) SaveSnapshot(dataset, scope string, payload []byte, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[dataset+"|"+scope] = payload
	m.at[dataset+"|"+scope] = at
	return nil
}

func (m *memSnapshots) LoadSnapshot(dataset, scope string, maxAge time.Duration) ([]byte, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.saved[dataset+"|"+scope]
	if !ok || time.Since(m.at[dataset+"|"+scope]) > maxAge {
		return nil, time.Time{}, sql.ErrNoRows
	}
	return p, m.at[dataset+"|"+scope], nil
}

func TestDistrictWise(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/server/api/v2/districtWiseLeadingIndicators", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		serveFixture(t, "state")(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	ds, err := c.DistrictWise(context.Background(), "tok", StateQuery{StateID: "22", Des: "111"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "des=111&session=2025-2026&state_id=22", gotQuery)
	assert.Equal(t, "Chattisgarh", ds.StateData.Name)
	assert.Len(t, ds.LeadingIndicators, 14)
}

func TestDistrictLevel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/server/api/v2/districtLevelLeadingIndicators", r.URL.Path)
		require.Equal(t, "111", r.URL.Query().Get("district_id"))
		serveFixture(t, "district")(w, r)
	}))
	defer srv.Close()

	ds, err := NewClient(srv.URL).DistrictLevel(context.Background(), "tok", DistrictQuery{StateID: "22", DistrictID: "111"})
	require.NoError(t, err)
	assert.Equal(t, "RAIPUR", ds.DistrictData.Name)
}

func TestDataInsightsPostsForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "1111", r.PostForm.Get("block_id"))
		require.Equal(t, "2025-2026", r.PostForm.Get("session"))
		_, hasDistrict := r.PostForm["district_id"]
		require.False(t, hasDistrict, "empty ids are omitted")
		serveFixture(t, "block")(w, r)
	}))
	defer srv.Close()

	ds, err := NewClient(srv.URL).DataInsights(context.Background(), "tok", InsightsQuery{StateID: "22", BlockID: "1111"})
	require.NoError(t, err)
	assert.Len(t, ds.LeadingIndicators, 5)
}

func TestNonJSONResponse(t *testing.T) {
	tests := map[string]struct {
		body string
		want string
	}{
		"html body":  {body: "<html>Bad Gateway</html>", want: "<html>Bad Gateway</html>"},
		"empty body": {body: "", want: "unexpected response type"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(http.StatusBadGateway)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).DistrictWise(context.Background(), "tok", StateQuery{StateID: "22"})
			var respErr *ResponseError
			require.ErrorAs(t, err, &respErr)
			assert.Equal(t, http.StatusBadGateway, respErr.Status)
			assert.Equal(t, tc.want, err.Error())
			assert.Equal(t, tc.want, Message(err))
		})
	}
}

func TestEnvelopeErrors(t *testing.T) {
	tests := map[string]struct {
		status  int
		payload map[string]any
		want    string
	}{
		"error flag with message": {
			status:  http.StatusOK,
			payload: map[string]any{"statusCode": 401, "error": true, "message": "Token expired"},
			want:    "Token expired",
		},
		"error string": {
			status:  http.StatusOK,
			payload: map[string]any{"statusCode": 400, "error": "Invalid district", "message": "Failed"},
			want:    "Invalid district",
		},
		"error flag without message": {
			status:  http.StatusOK,
			payload: map[string]any{"error": true},
			want:    "failed to load state",
		},
		"non-2xx without error flag": {
			status:  http.StatusInternalServerError,
			payload: map[string]any{"error": false, "message": "Server exploded"},
			want:    "Server exploded",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.payload)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).DistrictWise(context.Background(), "tok", StateQuery{StateID: "22"})
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.want, apiErr.Message)
		})
	}
}

func TestNoBaseURL(t *testing.T) {
	_, err := NewClient("  ").DistrictWise(context.Background(), "tok", StateQuery{})
	require.ErrorIs(t, err, ErrNoBaseURL)
}

func TestSnapshotReadThrough(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		serveFixture(t, "state")(w, r)
	}))
	defer srv.Close()

	snaps := newMemSnapshots()
	c := NewClient(srv.URL, WithSnapshots(snaps, time.Hour))
	q := StateQuery{StateID: "22", Des: "111"}

	first, err := c.DistrictWise(context.Background(), "tok", q)
	require.NoError(t, err)
	second, err := c.DistrictWise(context.Background(), "tok", q)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, len(first.LeadingIndicators), len(second.LeadingIndicators))
	assert.Contains(t, snaps.saved, DatasetDistrictWise+"|"+snapshotScope(q.values(), "tok"))

	_, err = c.DistrictWise(context.Background(), "tok", StateQuery{StateID: "23", Des: "111"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "a different scope misses the snapshot")

	_, err = c.DistrictWise(context.Background(), "other-tok", q)
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "another session's token misses the snapshot")
}

func TestSnapshotScope(t *testing.T) {
	values := StateQuery{StateID: "22", Des: "111"}.values()

	assert.Equal(t, "des=111&session=2025-2026&state_id=22", snapshotScope(values, ""))
	assert.Equal(t, snapshotScope(values, "tok"), snapshotScope(values, "tok"))
	assert.NotEqual(t, snapshotScope(values, "tok"), snapshotScope(values, "other-tok"))
	assert.NotContains(t, snapshotScope(values, "tok"), "tok")
}

func TestRequestOTP(t *testing.T) {
	var got OTPRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/server/api/getOTP", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]any{
			"statusCode": 200, "error": false, "message": "OTP sent",
			"data": map[string]any{"newuser": false, "phone_number": got.PhoneNumber},
		})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL).RequestOTP(context.Background(), "98765-43210")
	require.NoError(t, err)
	assert.Equal(t, "9876543210", got.PhoneNumber)
	assert.Equal(t, "9876543210", res.PhoneNumber)
}

func TestRequestOTPRejectsBadPhone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).RequestOTP(context.Background(), "12345")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "phone_number")
}

func TestValidateOTP(t *testing.T) {
	tests := map[string]struct {
		data    any
		message string
		wantErr string
	}{
		"success": {
			data: map[string]any{
				"token":    "abc",
				"userinfo": map[string]any{"name": "Asha", "state": "22", "role": "state"},
			},
		},
		"missing token": {
			data:    map[string]any{"userinfo": map[string]any{"name": "Asha"}},
			message: "Success",
			wantErr: "Success",
		},
		"userinfo message": {
			data:    map[string]any{"token": "abc", "userinfo": "User is not mapped"},
			wantErr: "User is not mapped",
		},
		"no data": {
			data:    nil,
			wantErr: "invalid OTP",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body VerifyRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				require.Equal(t, "1234", body.OTP)
				writeJSON(w, http.StatusOK, map[string]any{"statusCode": 200, "error": false, "message": tc.message, "data": tc.data})
			}))
			defer srv.Close()

			creds, err := NewClient(srv.URL).ValidateOTP(context.Background(), "9876543210", " 1234 ")
			if tc.wantErr != "" {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tc.wantErr, apiErr.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "abc", creds.Token)
			assert.Equal(t, "Asha", creds.User.Name)
			assert.Equal(t, "22", creds.User.State)
		})
	}
}

func TestValidateOTPMalformedData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"statusCode": 200, "error": false, "data": []int{1, 2}})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ValidateOTP(context.Background(), "9876543210", "1234")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse OTP validation response")
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestDemo(t *testing.T) {
	ctx := context.Background()
	var d Demo

	_, err := d.ValidateOTP(ctx, "9876543210", "   ")
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "otp cannot be blank", vErr.Fields["otp"])

	creds, err := d.ValidateOTP(ctx, "9876543210", "1234")
	require.NoError(t, err)
	assert.Equal(t, DemoUser, creds.User)

	ds, err := d.DistrictWise(ctx, creds.Token, StateQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Chattisgarh", ds.StateData.Name)
}
