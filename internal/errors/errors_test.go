package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrNotAuthenticated,
		ErrConnection,
		ErrRequestFailed,
		ErrSessionExpired,
		ErrSiteNotFound,
		ErrEnvNotFound,
		ErrMissingSite,
		ErrMissingEnv,
		ErrUnknownAction,
		ErrExecFailed,
		ErrConfig,
		ErrCache,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	err := New(ErrConfig, "Invalid configuration", "Check config.yaml syntax")

	require.NotNil(t, err)
	assert.Equal(t, ErrConfig, err.Code)
	assert.Equal(t, "Invalid configuration", err.Message)
	assert.Equal(t, "Check config.yaml syntax", err.Suggestion)
	assert.Nil(t, err.Cause)
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
	}{
		{
			name:          "message and suggestion",
			err:           New(ErrConfig, "Invalid configuration", "Check config.yaml syntax"),
			expectedParts: []string{"✗ Invalid configuration", "Check config.yaml syntax"},
		},
		{
			name:          "cause is included",
			err:           WrapWithCode(errors.New("dial tcp: connection refused"), ErrConnection, "CONNECTION ERROR", ""),
			expectedParts: []string{"CONNECTION ERROR", "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()
			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
		})
	}
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("timeout after 30s"),
		ErrConnection,
		"CONNECTION ERROR",
		"Check your network",
	)

	lines := strings.Split(err.Error(), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "✗"))
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "  timeout after 30s", lines[2])
	assert.Equal(t, "  Check your network", lines[4])
}

func TestWrap(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(cause, "Request failed")

	assert.Equal(t, ErrRequestFailed, wrapped.Code)
	assert.Equal(t, cause, wrapped.Unwrap())
	assert.True(t, errors.Is(wrapped, cause))
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrCache))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))
}

func TestIsCode_Chain(t *testing.T) {
	inner := New(ErrSessionExpired, "Session expired", "")
	outer := WrapWithCode(inner, ErrRequestFailed, "Request failed", "")
	fmtWrapped := fmt.Errorf("listing sites: %w", outer)

	assert.True(t, IsCode(fmtWrapped, ErrRequestFailed))
	assert.True(t, IsCode(fmtWrapped, ErrSessionExpired))
	assert.False(t, IsCode(fmtWrapped, ErrConnection))
	assert.Equal(t, ErrRequestFailed, Code(fmtWrapped))
	assert.Equal(t, "", Code(errors.New("plain")))
}

func TestIsSessionOrConnection(t *testing.T) {
	expired := WrapWithCode(New(ErrRequestFailed, "Request failed", ""), ErrSessionExpired, "Session expired", "")

	assert.True(t, IsSessionOrConnection(NotAuthenticated()))
	assert.True(t, IsSessionOrConnection(fmt.Errorf("listing: %w", expired)))
	assert.True(t, IsSessionOrConnection(New(ErrConnection, "CONNECTION ERROR", "")))
	assert.False(t, IsSessionOrConnection(New(ErrRequestFailed, "Request failed", "")))
	assert.False(t, IsSessionOrConnection(errors.New("plain")))
	assert.False(t, IsSessionOrConnection(nil))
}

func TestTaxonomyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		code     string
		contains string
	}{
		{"not authenticated", NotAuthenticated(), ErrNotAuthenticated, "login"},
		{"missing site", MissingSite(), ErrMissingSite, "--site"},
		{"missing env", MissingEnv(), ErrMissingEnv, "--env"},
		{"site not found", SiteNotFound("myproject"), ErrSiteNotFound, "'myproject'"},
		{"env not found", EnvNotFound("live"), ErrEnvNotFound, "'live'"},
		{"unknown action", UnknownAction("site", "frobnicate", []string{"info"}), ErrUnknownAction, "frobnicate"},
		{"exec failed", ExecFailed(nil), ErrExecFailed, "execute the requested task"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Contains(t, tt.err.Error(), tt.contains)
		})
	}
}

func TestSiteNotFound_SuggestsListing(t *testing.T) {
	err := SiteNotFound("foo")
	assert.Contains(t, err.Suggestion, "terminus sites show")
}

func TestUnknownAction_ListsKnown(t *testing.T) {
	err := UnknownAction("site", "x", []string{"info", "environments"})
	assert.Contains(t, err.Suggestion, "info, environments")

	bare := UnknownAction("site", "x", nil)
	assert.Empty(t, bare.Suggestion)
}
