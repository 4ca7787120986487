package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/textproto"
	"strings"
)

const (
	headerDelimiter = "\r\n\r\n"
	continueMarker  = " 100 Continue"
)

// SessionNotFoundBody is the exact 403 body the API sends for a stale session.
const SessionNotFoundBody = `"Session not found."`

// splitExchange separates the header block from the body of a raw HTTP
// response. Some transports emit an interim "100 Continue" block before the
// real headers; when the first block is one, it is skipped.
func splitExchange(raw string) (headers, body string) {
	headers, body, _ = strings.Cut(raw, headerDelimiter)
	if strings.Contains(headers, continueMarker) {
		headers, body, _ = strings.Cut(body, headerDelimiter)
	}
	return headers, body
}

// interim records a 1xx response seen before the final one.
type interim struct {
	code   int
	header textproto.MIMEHeader
}

// rawExchange rebuilds the wire form of a response, interim blocks first,
// so the header/body split works on exactly what the server sent.
func rawExchange(resp *http.Response, interims []interim, body []byte) string {
	var b bytes.Buffer
	for _, in := range interims {
		fmt.Fprintf(&b, "%s %d %s\r\n", resp.Proto, in.code, http.StatusText(in.code))
		http.Header(in.header).Write(&b) //nolint:errcheck // bytes.Buffer never fails
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "%s %s\r\n", resp.Proto, resp.Status)
	resp.Header.Write(&b) //nolint:errcheck // bytes.Buffer never fails
	b.WriteString("\r\n")
	b.Write(body)
	return b.String()
}

// parseResponse turns a raw exchange into a Response. A body that is not
// valid JSON leaves Data nil.
func parseResponse(status int, raw string) *Response {
	headers, body := splitExchange(raw)
	resp := &Response{
		Status:  status,
		Headers: headers,
		Body:    body,
	}

	var decoded any
	if err := json.Unmarshal([]byte(body), &decoded); err == nil {
		resp.Data = decoded
	}
	return resp
}
