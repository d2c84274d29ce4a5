package fetchstate

import (
	"github.com/pders01/frontpage/internal/topstories"
)

// Status is the phase of a fetch cycle. Exactly one holds at a time.
type Status int

const (
	Loading Status = iota
	Error
	Ready
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Error:
		return "error"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// State is a snapshot of the tracker. Result is set only when Status is
// Ready and Err only when Status is Error.
type State struct {
	Section string
	Status  Status
	Result  *topstories.FetchResult
	Err     error
	Seq     uint64
}

// Message is the short description of Err shown to the user.
func (s State) Message() string {
	return topstories.Describe(s.Err)
}

// Stories returns the stories of a Ready state, or nil.
func (s State) Stories() []topstories.Story {
	if s.Status != Ready || s.Result == nil {
		return nil
	}
	return s.Result.Results
}
