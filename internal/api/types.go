package api

import (
	"fmt"
	"strings"
)

// Realm is the permission scope a request is made in.
type Realm string

const (
	RealmUser         Realm = "user"
	RealmSite         Realm = "site"
	RealmOrganization Realm = "organization"
	RealmPublic       Realm = "public"
)

// Valid reports whether r is one of the known realms.
func (r Realm) Valid() bool {
	switch r {
	case RealmUser, RealmSite, RealmOrganization, RealmPublic:
		return true
	}
	return false
}

// Method is the HTTP verb of a request.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
)

// Valid reports whether m is one of the supported verbs.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return true
	}
	return false
}

// sendsBody reports whether the payload travels as a JSON body rather than
// as a query string.
func (m Method) sendsBody() bool {
	return m == MethodPost || m == MethodPut || m == MethodDelete
}

// Session is the result of a login performed elsewhere. It is read from the
// cache and never changes during an invocation.
type Session struct {
	UserID string `json:"user_uuid" yaml:"user_uuid"`
	Token  string `json:"session" yaml:"-"`
}

// Valid reports whether the session can authenticate a request.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.UserID != ""
}

// RequestSpec fully determines one HTTP exchange.
type RequestSpec struct {
	Realm   Realm
	UUID    string
	Path    string
	Method  Method
	Payload any
}

// Get is shorthand for a GET request spec.
func Get(realm Realm, uuid, path string, query any) RequestSpec {
	return RequestSpec{Realm: realm, UUID: uuid, Path: path, Method: MethodGet, Payload: query}
}

func (s RequestSpec) validate() error {
	if !s.Realm.Valid() {
		return fmt.Errorf("unknown realm %q", s.Realm)
	}
	if !s.Method.Valid() {
		return fmt.Errorf("unsupported method %q", s.Method)
	}
	if strings.TrimSpace(s.UUID) == "" {
		return fmt.Errorf("%s request needs a uuid", s.Realm)
	}
	return nil
}

// String renders the spec for logs and debug dumps.
func (s RequestSpec) String() string {
	if s.Path == "" {
		return fmt.Sprintf("%s %s=%s", s.Method, s.Realm, s.UUID)
	}
	return fmt.Sprintf("%s %s=%s path=%s", s.Method, s.Realm, s.UUID, s.Path)
}

// Response is one completed exchange.
type Response struct {
	Status  int    `yaml:"status"`
	Headers string `yaml:"headers"`
	Body    string `yaml:"body"`
	// Data is the decoded JSON body, or nil when the body is not JSON.
	Data any `yaml:"data,omitempty"`
}

// Payload returns the value under a top-level "data" key when the decoded
// body is an object carrying one, and the whole decoded body otherwise.
func (r *Response) Payload() any {
	if r == nil {
		return nil
	}
	if obj, ok := r.Data.(map[string]any); ok {
		if inner, ok := obj["data"]; ok {
			return inner
		}
	}
	return r.Data
}
