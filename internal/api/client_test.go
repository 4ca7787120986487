package api

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rileyhilliard/terminus/internal/errors"
	"github.com/rileyhilliard/terminus/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSession = &Session{UserID: "11111111-2222-3333-4444-555555555555", Token: "X-Pantheon-Session=tok"}

// newTestClient starts a TLS server running handler and returns a Client
// pointed at it.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *logger.BufferLogger) {
	t.Helper()
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	log := logger.NewBufferLogger()
	c := NewClient(Config{
		Host:      host,
		Port:      port,
		Timeout:   5 * time.Second,
		Transport: server.Client().Transport,
		Logger:    log,
	})
	return c, log
}

func TestClient_URL(t *testing.T) {
	c := NewClient(Config{Host: "dashboard.example.test", Port: 443, Logger: logger.Noop()})

	tests := []struct {
		name string
		spec RequestSpec
		want string
	}{
		{
			name: "realm and uuid only",
			spec: RequestSpec{Realm: RealmSite, UUID: "abc", Method: MethodGet},
			want: "https://dashboard.example.test:443/terminus.php?site=abc",
		},
		{
			name: "path is query escaped",
			spec: RequestSpec{Realm: RealmSite, UUID: "abc", Path: "environments/dev/bindings", Method: MethodGet},
			want: "https://dashboard.example.test:443/terminus.php?site=abc&path=environments%2Fdev%2Fbindings",
		},
		{
			name: "GET payload appended after path",
			spec: RequestSpec{Realm: RealmUser, UUID: "u1", Path: "sites", Method: MethodGet, Payload: map[string]any{"hydrated": true}},
			want: "https://dashboard.example.test:443/terminus.php?user=u1&path=sites&hydrated=1",
		},
		{
			name: "GET payload keys sorted",
			spec: RequestSpec{Realm: RealmUser, UUID: "u1", Method: MethodGet, Payload: map[string]string{"z": "1", "a": "2 3"}},
			want: "https://dashboard.example.test:443/terminus.php?user=u1&a=2+3&z=1",
		},
		{
			name: "POST payload stays out of the URL",
			spec: RequestSpec{Realm: RealmSite, UUID: "abc", Path: "backups", Method: MethodPost, Payload: map[string]any{"x": 1}},
			want: "https://dashboard.example.test:443/terminus.php?site=abc&path=backups",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.URL(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := c.URL(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, got, again, "URL composition must be stable")
		})
	}
}

func TestClient_URL_UnsupportedPayload(t *testing.T) {
	c := NewClient(Config{Host: "h", Logger: logger.Noop()})
	_, err := c.URL(RequestSpec{Realm: RealmUser, UUID: "u", Method: MethodGet, Payload: []int{1}})
	assert.Error(t, err)
}

func TestExecute_NotAuthenticated(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))

	for _, s := range []*Session{nil, {}, {UserID: "u"}} {
		_, err := c.Execute(context.Background(), s, Get(RealmUser, "u", "sites", nil))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrNotAuthenticated))
	}
	assert.Equal(t, int32(0), hits.Load(), "no request may be sent without a session")
}

func TestExecute_GetSendsCookieAndQuery(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, Endpoint, r.URL.Path)
		assert.Equal(t, "u1", r.URL.Query().Get("user"))
		assert.Equal(t, "sites", r.URL.Query().Get("path"))
		assert.Equal(t, "1", r.URL.Query().Get("hydrated"))
		assert.Equal(t, testSession.Token, r.Header.Get("Cookie"))
		assert.Equal(t, int64(0), r.ContentLength)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"abc":{"information":{"name":"foo"}}}`)) //nolint:errcheck
	}))

	resp, err := c.Execute(context.Background(), testSession,
		Get(RealmUser, "u1", "sites", map[string]any{"hydrated": true}))
	require.NoError(t, err)

	assert.Equal(t, 200, resp.Status)
	assert.Contains(t, resp.Headers, "200 OK")
	assert.Contains(t, resp.Headers, "Content-Type: application/json")
	assert.Equal(t, `{"abc":{"information":{"name":"foo"}}}`, resp.Body)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, data, "abc")
}

func TestExecute_BodyMethodsWrapPayload(t *testing.T) {
	for _, method := range []Method{MethodPost, MethodPut, MethodDelete} {
		t.Run(string(method), func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, string(method), r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				body, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				assert.Equal(t, int64(len(body)), r.ContentLength)

				var decoded map[string]any
				assert.NoError(t, json.Unmarshal(body, &decoded))
				assert.Equal(t, map[string]any{"data": map[string]any{"env": "dev"}}, decoded)
				assert.Empty(t, r.URL.Query().Get("env"), "body payload must not leak into the query")

				w.Write([]byte(`"ok"`)) //nolint:errcheck
			}))

			resp, err := c.Execute(context.Background(), testSession, RequestSpec{
				Realm:   RealmSite,
				UUID:    "abc",
				Path:    "backups",
				Method:  method,
				Payload: map[string]string{"env": "dev"},
			})
			require.NoError(t, err)
			assert.Equal(t, "ok", resp.Data)
		})
	}
}

func TestExecute_NonJSONBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>")) //nolint:errcheck
	}))

	resp, err := c.Execute(context.Background(), testSession, Get(RealmPublic, "x", "", nil))
	require.NoError(t, err)
	assert.Nil(t, resp.Data)
	assert.Equal(t, "<html>maintenance</html>", resp.Body)
}

func TestExecute_Classification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantExpired   bool
		wantFailedMsg string
	}{
		{"session not found sentinel", http.StatusForbidden, `"Session not found."`, true, "HTTP 403"},
		{"other 403 body", http.StatusForbidden, `"Forbidden."`, false, "Forbidden"},
		{"sentinel without quotes", http.StatusForbidden, `Session not found.`, false, "HTTP 403"},
		{"sentinel on a 404", http.StatusNotFound, `"Session not found."`, false, "HTTP 404"},
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, false, "boom"},
		{"first failing status", 400, "", false, "HTTP 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, log := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body)) //nolint:errcheck
			}))

			resp, err := c.Execute(context.Background(), testSession, Get(RealmSite, "abc", "", nil))
			require.Error(t, err)
			require.NotNil(t, resp, "failed responses are returned for diagnostics")
			assert.Equal(t, tt.status, resp.Status)

			assert.True(t, errors.IsCode(err, errors.ErrRequestFailed))
			assert.Equal(t, tt.wantExpired, errors.IsCode(err, errors.ErrSessionExpired))
			assert.Contains(t, err.Error(), tt.wantFailedMsg)
			assert.False(t, log.HasLevel("error"), "the caller reports the failure")
			assert.True(t, log.Contains("request failed"))

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.status, statusErr.Status)
		})
	}
}

// withoutDate drops the Date header so two exchanges can be compared.
func withoutDate(headers string) string {
	lines := strings.Split(headers, "\r\n")
	kept := lines[:0]
	for _, l := range lines {
		if !strings.HasPrefix(l, "Date:") {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\r\n")
}

func TestExecute_InterimResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantExpired bool
	}{
		{"json body", http.StatusOK, `{"data":{"name":"foo"}}`, false},
		{"session sentinel", http.StatusForbidden, `"Session not found."`, true},
	}

	for _, tt := range tests {
		for _, early := range []int{0, http.StatusContinue, http.StatusEarlyHints} {
			t.Run(tt.name+"/"+strconv.Itoa(early), func(t *testing.T) {
				c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if early != 0 {
						w.WriteHeader(early)
					}
					w.WriteHeader(tt.status)
					w.Write([]byte(tt.body)) //nolint:errcheck
				}))
				plain, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					w.Write([]byte(tt.body)) //nolint:errcheck
				}))

				spec := Get(RealmUser, "u", "sites", nil)
				resp, err := c.Execute(context.Background(), testSession, spec)
				want, wantErr := plain.Execute(context.Background(), testSession, spec)

				require.NotNil(t, resp)
				require.NotNil(t, want)
				assert.Equal(t, wantErr == nil, err == nil)
				assert.Equal(t, tt.wantExpired, errors.IsCode(err, errors.ErrSessionExpired))
				assert.Equal(t, tt.status, resp.Status)
				assert.Equal(t, want.Body, resp.Body)
				assert.Equal(t, want.Data, resp.Data)
				assert.Equal(t, withoutDate(want.Headers), withoutDate(resp.Headers))
				assert.NotContains(t, resp.Headers, "100 Continue")
				assert.NotContains(t, resp.Headers, "103 Early Hints")
			})
		}
	}
}

func TestExecute_ConnectionError(t *testing.T) {
	// Grab a free port and close it so the dial is refused.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	log := logger.NewBufferLogger()
	c := NewClient(Config{Host: "127.0.0.1", Port: port, Timeout: 2 * time.Second, Logger: log})

	resp, err := c.Execute(context.Background(), testSession, Get(RealmUser, "u", "sites", nil))
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConnection))
	assert.Contains(t, err.Error(), "CONNECTION ERROR")
	assert.Nil(t, c.httpClient, "handle is dropped after a transport failure")

	// A later call reopens lazily and fails the same way rather than panicking.
	_, err = c.Execute(context.Background(), testSession, Get(RealmUser, "u", "sites", nil))
	assert.True(t, errors.IsCode(err, errors.ErrConnection))
}

func TestExecute_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	u, _ := url.Parse(server.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)
	c := NewClient(Config{
		Host:      host,
		Port:      port,
		Timeout:   100 * time.Millisecond,
		Transport: server.Client().Transport,
		Logger:    logger.Noop(),
	})

	_, err := c.Execute(context.Background(), testSession, Get(RealmUser, "u", "", nil))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConnection))
}

func TestExecute_ReusesHandle(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`)) //nolint:errcheck
	}))

	_, err := c.Execute(context.Background(), testSession, Get(RealmUser, "u", "", nil))
	require.NoError(t, err)
	first := c.httpClient

	_, err = c.Execute(context.Background(), testSession, Get(RealmUser, "u", "", nil))
	require.NoError(t, err)
	assert.Same(t, first, c.httpClient)
}

func TestExecute_InvalidSpec(t *testing.T) {
	c := NewClient(Config{Host: "h", Logger: logger.Noop()})

	_, err := c.Execute(context.Background(), testSession, RequestSpec{Realm: "planet", UUID: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRequestFailed))

	_, err = c.Execute(context.Background(), testSession, RequestSpec{Realm: RealmSite, UUID: "x", Method: "PATCH"})
	require.Error(t, err)

	_, err = c.Execute(context.Background(), testSession, RequestSpec{Realm: RealmSite})
	require.Error(t, err)
}

func TestOneboxSkipsVerification(t *testing.T) {
	assert.True(t, NewClient(Config{Host: "dev.onebox.example"}).skipVerify())
	assert.True(t, NewClient(Config{Host: "x", InsecureSkipVerify: true}).skipVerify())
	assert.False(t, NewClient(Config{Host: "dashboard.example.test"}).skipVerify())
}

func TestEncodeQuery(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    string
		wantErr bool
	}{
		{"nil", nil, "", false},
		{"url values", url.Values{"b": {"2"}, "a": {"1"}}, "a=1&b=2", false},
		{"bools", map[string]any{"t": true, "f": false}, "f=0&t=1", false},
		{"numbers", map[string]any{"i": 3, "f": 1.5, "l": int64(7)}, "f=1.5&i=3&l=7", false},
		{"nested value", map[string]any{"x": []string{"a"}}, "", true},
		{"unsupported type", 42, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeQuery(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
