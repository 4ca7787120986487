// Package testing provides test doubles for the api package.
package testing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/rileyhilliard/terminus/internal/api"
	"github.com/rileyhilliard/terminus/internal/errors"
)

// Reply configures what the fake returns for one route.
type Reply struct {
	// Data is encoded to JSON and decoded back, so handlers see the same
	// shapes a real response produces.
	Data any
	// Status defaults to 200.
	Status int
	// Body overrides the encoded Data when set.
	Body string
	// Err is returned instead of a response (e.g. a connection error).
	Err error
}

// FakeExecutor answers RequestSpecs from a route table without a network.
// Replies for a route are consumed in order; the last one repeats.
type FakeExecutor struct {
	mu      sync.Mutex
	replies map[string][]Reply

	// Calls records every spec executed, in order.
	Calls []api.RequestSpec
}

// NewFakeExecutor creates an executor with no routes.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{replies: make(map[string][]Reply)}
}

// Route identifies a request by method, realm, uuid and path.
func Route(method api.Method, realm api.Realm, uuid, path string) string {
	if method == "" {
		method = api.MethodGet
	}
	return fmt.Sprintf("%s %s=%s path=%s", method, realm, uuid, path)
}

// On queues a reply for a GET route.
func (f *FakeExecutor) On(realm api.Realm, uuid, path string, reply Reply) *FakeExecutor {
	return f.OnMethod(api.MethodGet, realm, uuid, path, reply)
}

// OnMethod queues a reply for a route with an explicit method.
func (f *FakeExecutor) OnMethod(method api.Method, realm api.Realm, uuid, path string, reply Reply) *FakeExecutor {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := Route(method, realm, uuid, path)
	f.replies[key] = append(f.replies[key], reply)
	return f
}

// Execute implements api.Executor.
func (f *FakeExecutor) Execute(ctx context.Context, session *api.Session, spec api.RequestSpec) (*api.Response, error) {
	if !session.Valid() {
		return nil, errors.NotAuthenticated()
	}

	f.mu.Lock()
	f.Calls = append(f.Calls, spec)
	key := Route(spec.Method, spec.Realm, spec.UUID, spec.Path)
	queue := f.replies[key]
	var reply Reply
	found := len(queue) > 0
	if found {
		reply = queue[0]
		if len(queue) > 1 {
			f.replies[key] = queue[1:]
		}
	}
	f.mu.Unlock()

	if !found {
		reply = Reply{Status: http.StatusNotFound, Body: `"Not found."`}
	}
	if reply.Err != nil {
		return nil, reply.Err
	}

	resp, err := buildResponse(reply)
	if err != nil {
		return nil, err
	}
	if resp.Status > 399 {
		return resp, errors.WrapWithCode(&api.StatusError{Status: resp.Status, Body: resp.Body},
			errors.ErrRequestFailed, "Request failed", "")
	}
	return resp, nil
}

func buildResponse(reply Reply) (*api.Response, error) {
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}

	body := reply.Body
	if body == "" && reply.Data != nil {
		encoded, err := json.Marshal(reply.Data)
		if err != nil {
			return nil, err
		}
		body = string(encoded)
	}

	resp := &api.Response{
		Status:  status,
		Headers: fmt.Sprintf("HTTP/1.1 %d %s", status, http.StatusText(status)),
		Body:    body,
	}
	var decoded any
	if err := json.Unmarshal([]byte(body), &decoded); err == nil {
		resp.Data = decoded
	}
	return resp, nil
}

// CallCount returns how many calls matched the route.
func (f *FakeExecutor) CallCount(method api.Method, realm api.Realm, uuid, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := Route(method, realm, uuid, path)
	n := 0
	for _, c := range f.Calls {
		if Route(c.Method, c.Realm, c.UUID, c.Path) == want {
			n++
		}
	}
	return n
}

// TotalCalls returns the number of calls made.
func (f *FakeExecutor) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
