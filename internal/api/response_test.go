package api

import (
	"net/http"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitExchange(t *testing.T) {
	plain := "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n{\"data\":[]}"
	withContinue := "HTTP/1.1 100 Continue\r\n\r\n" + plain

	h1, b1 := splitExchange(plain)
	h2, b2 := splitExchange(withContinue)

	assert.Equal(t, "HTTP/1.1 200 OK\r\nContent-Type: application/json", h1)
	assert.Equal(t, `{"data":[]}`, b1)
	assert.Equal(t, h1, h2, "interim block must be skipped")
	assert.Equal(t, b1, b2)
}

func TestSplitExchange_BodyKeepsBlankLines(t *testing.T) {
	raw := "HTTP/1.1 200 OK\r\n\r\nline one\r\n\r\nline two"

	headers, body := splitExchange(raw)
	assert.Equal(t, "HTTP/1.1 200 OK", headers)
	assert.Equal(t, "line one\r\n\r\nline two", body)
}

func TestSplitExchange_NoDelimiter(t *testing.T) {
	headers, body := splitExchange("HTTP/1.1 204 No Content\r\n")
	assert.Equal(t, "HTTP/1.1 204 No Content\r\n", headers)
	assert.Empty(t, body)
}

func TestRawExchange_InterimFirst(t *testing.T) {
	resp := &http.Response{
		Proto:  "HTTP/1.1",
		Status: "200 OK",
		Header: http.Header{"X-Test": {"1"}},
	}
	interims := []interim{{code: 100, header: textproto.MIMEHeader{}}}

	raw := rawExchange(resp, interims, []byte(`{"ok":true}`))
	assert.Contains(t, raw, "HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 200 OK\r\n")

	parsed := parseResponse(200, raw)
	assert.Equal(t, "HTTP/1.1 200 OK\r\nX-Test: 1", parsed.Headers)
	assert.Equal(t, `{"ok":true}`, parsed.Body)
	assert.Equal(t, map[string]any{"ok": true}, parsed.Data)

	same := parseResponse(200, rawExchange(resp, nil, []byte(`{"ok":true}`)))
	assert.Equal(t, parsed, same)
}

func TestResponse_Payload(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
		want any
	}{
		{"nil response", nil, nil},
		{"data envelope", &Response{Data: map[string]any{"data": []any{"a"}}}, []any{"a"}},
		{"bare object", &Response{Data: map[string]any{"dev": map[string]any{}}}, map[string]any{"dev": map[string]any{}}},
		{"scalar", &Response{Data: "ok"}, "ok"},
		{"not json", &Response{Body: "<html>"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.Payload())
		})
	}
}

func TestSessionValid(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.Valid())
	assert.False(t, (&Session{Token: "t"}).Valid())
	assert.True(t, (&Session{UserID: "u", Token: "t"}).Valid())
}

func TestRealmAndMethod(t *testing.T) {
	for _, r := range []Realm{RealmUser, RealmSite, RealmOrganization, RealmPublic} {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, Realm("product").Valid())

	for _, m := range []Method{MethodGet, MethodPost, MethodPut, MethodDelete} {
		assert.True(t, m.Valid(), m)
	}
	assert.False(t, Method("PATCH").Valid())
	assert.False(t, MethodGet.sendsBody())
	assert.True(t, MethodDelete.sendsBody())
}

func TestRequestSpecString(t *testing.T) {
	spec := Get(RealmSite, "abc", "environments/dev/bindings", nil)
	require.Equal(t, MethodGet, spec.Method)
	assert.Equal(t, "GET site=abc path=environments/dev/bindings", spec.String())
	assert.Equal(t, "GET user=u", Get(RealmUser, "u", "", nil).String())
}
