package cli

import (
	stderrors "errors"

	"github.com/rileyhilliard/terminus/internal/errors"
	"github.com/rileyhilliard/terminus/internal/output"
)

// ErrCodeUnknown marks errors that carry no structured code.
const ErrCodeUnknown = "UNKNOWN"

// ErrorToJSON converts a Go error to the machine-readable error body. The
// outermost structured code wins; when the error wraps another structured
// error, that one's code and message are kept under details.cause.
func ErrorToJSON(err error) *output.ErrorBody {
	if err == nil {
		return nil
	}

	var structured *errors.Error
	if !stderrors.As(err, &structured) {
		return &output.ErrorBody{
			Code:    ErrCodeUnknown,
			Message: err.Error(),
		}
	}

	body := &output.ErrorBody{
		Code:       structured.Code,
		Message:    structured.Message,
		Suggestion: structured.Suggestion,
	}

	if structured.Cause != nil {
		var inner *errors.Error
		if stderrors.As(structured.Cause, &inner) {
			body.Details = map[string]string{
				"cause_code": inner.Code,
				"cause":      inner.Message,
			}
		} else {
			body.Details = map[string]string{"cause": structured.Cause.Error()}
		}
	}
	return body
}
