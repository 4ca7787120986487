package dispatch

// ResultKind tags a Result.
type ResultKind int

const (
	KindFailure ResultKind = iota
	KindMessage
	KindRecords
)

func (k ResultKind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindRecords:
		return "records"
	default:
		return "failure"
	}
}

// Result is what a handler produced. The zero value is a Failure.
type Result struct {
	Kind ResultKind
	Text string
	Data any
	Err  error
}

// Message is a single line of human text.
func Message(text string) Result {
	return Result{Kind: KindMessage, Text: text}
}

// Records is tabular data rendered by the presenter.
func Records(data any) Result {
	return Result{Kind: KindRecords, Data: data}
}

// Failure reports that the action could not complete. err may be nil.
func Failure(err error) Result {
	return Result{Kind: KindFailure, Err: err}
}

// Failed reports whether the result should be reported as an error. An
// empty message counts as a failure.
func (r Result) Failed() bool {
	switch r.Kind {
	case KindMessage:
		return r.Text == ""
	case KindRecords:
		return false
	default:
		return true
	}
}
