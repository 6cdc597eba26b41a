package session

import (
	"context"
	"testing"
	"time"

	"genexplorer/domain/core"
	"genexplorer/domain/table"
	"genexplorer/internal/projection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(kind table.Kind) *projection.Result {
	return &projection.Result{Kind: kind, Frame: table.NewFrame(kind, []string{"design"}), Loaded: true}
}

func TestSession_LastWriteWins(t *testing.T) {
	s := New("s1")
	older := s.Begin(context.Background())
	newer := s.Begin(context.Background())

	assert.ErrorIs(t, older.Context().Err(), context.Canceled, "older request is abandoned")
	assert.NoError(t, newer.Context().Err())

	sel := table.NewSelection([]string{"A"}, nil, nil)
	snap, err := s.Commit(newer, sel, result(table.KindMu), result(table.KindPhi))
	require.NoError(t, err)
	assert.Equal(t, newer.ID, snap.RequestID)

	_, err = s.Commit(older, table.NewSelection([]string{"B"}, nil, nil), nil, nil)
	assert.ErrorIs(t, err, core.ErrSuperseded)
	assert.Equal(t, []string{"A"}, s.Snapshot().Selection.Genes(), "stale commit does not touch state")
}

func TestSession_CommitAfterSupersedeFails(t *testing.T) {
	s := New("s1")
	first := s.Begin(context.Background())
	_ = s.Begin(context.Background())

	_, err := s.Commit(first, table.NewSelection(nil, nil, nil), nil, nil)
	assert.ErrorIs(t, err, core.ErrSuperseded)
}

func TestSession_ReleaseClearsInflight(t *testing.T) {
	s := New("s1")
	req := s.Begin(context.Background())
	req.Release()

	assert.ErrorIs(t, req.Context().Err(), context.Canceled)
	_, err := s.Commit(req, table.NewSelection(nil, nil, nil), nil, nil)
	assert.ErrorIs(t, err, core.ErrSuperseded)
}

func TestSnapshot_Result(t *testing.T) {
	var snap Snapshot
	_, err := snap.Result(table.KindMu)
	assert.ErrorIs(t, err, core.ErrNoFilterApplied)

	snap.Phi = result(table.KindPhi)
	r, err := snap.Result(table.KindPhi)
	require.NoError(t, err)
	assert.Equal(t, table.KindPhi, r.Kind)

	_, err = snap.Result("nu")
	assert.ErrorIs(t, err, core.ErrUnknownKind)
}

func TestManager(t *testing.T) {
	m := NewManager()
	a := m.Get("")
	assert.Equal(t, DefaultID, a.ID)
	assert.Same(t, a, m.Get(DefaultID))
	m.Get("other")
	assert.Equal(t, 2, m.Len())

	assert.Equal(t, 0, m.CleanupOldSessions(time.Hour))
	assert.Equal(t, 2, m.CleanupOldSessions(-time.Second))
	assert.Equal(t, 0, m.Len())
}
