// Package fetchstate tracks the loading, error and ready phases of top
// stories requests. Every request is tagged with a sequence number and only
// the outcome of the latest one is applied; superseded requests are
// cancelled through their context.
package fetchstate

import (
	"context"
	"errors"
	"sync"

	"github.com/pders01/frontpage/internal/debuglog"
	"github.com/pders01/frontpage/internal/topstories"
)

var errNoResult = errors.New("source returned no result")

// Request is one fetch cycle issued by Begin.
type Request struct {
	Seq     uint64
	Section string
	ctx     context.Context
}

// Context is cancelled once the request is superseded or the tracker is
// closed.
func (r Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Outcome is what a Source produced for a Request.
type Outcome struct {
	Request Request
	Result  *topstories.FetchResult
	Err     error
}

type Tracker struct {
	mu       sync.Mutex
	source   topstories.Source
	seq      uint64
	state    State
	cancel   context.CancelFunc
	resolved bool
}

func NewTracker(source topstories.Source) *Tracker {
	return &Tracker{
		source: source,
		state:  State{Section: topstories.DefaultSection, Status: Loading},
	}
}

// Begin starts a new cycle for section. The state becomes Loading with no
// result and no error, and any request still in flight is cancelled.
func (t *Tracker) Begin(section string) Request {
	section = topstories.NormalizeSection(section)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.seq++
	t.resolved = false
	t.state = State{Section: section, Status: Loading, Seq: t.seq}

	debuglog.WithFields(map[string]any{"section": section, "seq": t.seq}).Debugf("fetch started")

	return Request{Seq: t.seq, Section: section, ctx: ctx}
}

// Run performs the blocking fetch for req. It does not touch the state.
func (t *Tracker) Run(req Request) Outcome {
	result, err := t.source.TopStories(req.Context(), req.Section)
	return Outcome{Request: req, Result: result, Err: err}
}

// Resolve applies o if it belongs to the latest request and reports whether
// it did. Outcomes of superseded requests leave the state untouched.
func (t *Tracker) Resolve(o Outcome) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	log := debuglog.WithFields(map[string]any{"section": o.Request.Section, "seq": o.Request.Seq})

	if o.Request.Seq != t.seq || t.resolved {
		log.Debugf("discarding stale outcome (current seq %d)", t.seq)
		return t.state, false
	}

	err := o.Err
	if err == nil {
		switch {
		case o.Result == nil:
			err = &topstories.ParseError{What: "top stories response", Err: errNoResult}
		case o.Result.Status != topstories.StatusOK:
			err = &topstories.APIStatusError{Status: o.Result.Status}
		}
	}

	if err != nil {
		t.state = State{Section: o.Request.Section, Status: Error, Err: err, Seq: o.Request.Seq}
		log.Warnf("fetch failed: %v", err)
	} else {
		t.state = State{Section: o.Request.Section, Status: Ready, Result: o.Result, Seq: o.Request.Seq}
		log.Infof("fetch ready with %d stories", len(o.Result.Results))
	}

	t.resolved = true
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	return t.state, true
}

// Load runs a whole cycle for section synchronously.
func (t *Tracker) Load(section string) State {
	req := t.Begin(section)
	state, _ := t.Resolve(t.Run(req))
	return state
}

// Retry begins a new cycle for the section of the current state.
func (t *Tracker) Retry() Request {
	return t.Begin(t.State().Section)
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Close cancels the request in flight. Its outcome will be discarded.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.seq++
}
