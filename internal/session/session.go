// Package session holds the interactive state of one explorer user: the
// current selection and the most recently committed filter results.
package session

import (
	"context"
	"sync"
	"time"

	"genexplorer/domain/core"
	"genexplorer/domain/table"
	"genexplorer/internal/projection"

	"github.com/google/uuid"
)

// Snapshot is the committed state of a session
type Snapshot struct {
	RequestID string             `json:"request_id"`
	Selection table.Selection    `json:"-"`
	Mu        *projection.Result `json:"mu"`
	Phi       *projection.Result `json:"phi"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Result returns the committed result for a table kind
func (s Snapshot) Result(kind table.Kind) (*projection.Result, error) {
	var r *projection.Result
	switch kind {
	case table.KindMu:
		r = s.Mu
	case table.KindPhi:
		r = s.Phi
	default:
		_, err := table.ParseKind(string(kind))
		return nil, err
	}
	if r == nil {
		return nil, core.ErrNoFilterApplied
	}
	return r, nil
}

// Request is one in-flight filter request. Starting a newer request on the
// same session cancels its context.
type Request struct {
	ID  string
	ctx context.Context

	cancel  context.CancelFunc
	session *Session
}

// Context is cancelled once the request is superseded or released
func (r *Request) Context() context.Context {
	return r.ctx
}

// Release frees the request's resources; it is safe after Commit
func (r *Request) Release() {
	r.cancel()
	r.session.mu.Lock()
	if r.session.inflight == r {
		r.session.inflight = nil
	}
	r.session.mu.Unlock()
}

// Session is last-write-wins: only the most recently begun request may commit
type Session struct {
	ID string

	mu         sync.Mutex
	inflight   *Request
	snapshot   Snapshot
	lastAccess time.Time
}

// New creates an empty session
func New(id string) *Session {
	return &Session{ID: id, lastAccess: time.Now()}
}

// Begin starts a request, cancelling any request still in flight
func (s *Session) Begin(parent context.Context) *Request {
	ctx, cancel := context.WithCancel(parent)
	req := &Request{ID: uuid.NewString(), ctx: ctx, cancel: cancel, session: s}

	s.mu.Lock()
	if s.inflight != nil {
		s.inflight.cancel()
	}
	s.inflight = req
	s.lastAccess = time.Now()
	s.mu.Unlock()

	return req
}

// Commit publishes the results of req if no newer request has begun
func (s *Session) Commit(req *Request, sel table.Selection, mu, phi *projection.Result) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight != req {
		return s.snapshot, core.ErrSuperseded
	}
	s.snapshot = Snapshot{
		RequestID: req.ID,
		Selection: sel,
		Mu:        mu,
		Phi:       phi,
		UpdatedAt: time.Now(),
	}
	s.inflight = nil
	s.lastAccess = s.snapshot.UpdatedAt
	return s.snapshot, nil
}

// Snapshot returns the committed state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
	return s.snapshot
}

// LastAccess returns when the session was last used
func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}
