package projection

import (
	"context"
	"testing"

	"genexplorer/domain/core"
	"genexplorer/domain/table"
	apperrors "genexplorer/internal/errors"
	"genexplorer/internal/schema"
	"genexplorer/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFilter() (*Filter, *testkit.MemoryStore) {
	store := testkit.NewMemoryStore(testkit.ExampleMu(), testkit.ExamplePhi())
	return NewFilter(store, nil), store
}

func TestResolveColumns(t *testing.T) {
	sch, err := schema.Classify([]string{"design", "A", "B", "C", "group", "size"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		selected []string
		used     []string
		missing  []string
	}{
		{"header order", []string{"C", "A"}, []string{"design", "A", "C", "group", "size"}, nil},
		{"duplicates collapse", []string{"B", "B", "A", "B"}, []string{"design", "A", "B", "group", "size"}, nil},
		{"missing reported once", []string{"A", "Z", "Z", "Y"}, []string{"design", "A", "group", "size"}, []string{"Z", "Y"}},
		{"metadata is not an entity", []string{"group"}, []string{"design", "group", "size"}, []string{"group"}},
		{"nothing selected", nil, []string{"design", "group", "size"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			used, missing := ResolveColumns(sch, tt.selected)
			assert.Equal(t, tt.used, used)
			assert.Equal(t, tt.missing, missing)
		})
	}
}

func TestProject_EndToEnd(t *testing.T) {
	f, _ := newFilter()
	sel := table.NewSelection([]string{"A"}, []string{"1"}, &table.SizeRange{Min: 1, Max: 2})

	res, err := f.Project(context.Background(), table.KindMu, sel)
	require.NoError(t, err)

	assert.True(t, res.Loaded)
	assert.Equal(t, []string{"design", "A", "group", "size"}, res.UsedColumns)
	assert.Equal(t, []string{"design", "A", "group", "size"}, res.Frame.Columns)
	assert.Equal(t, [][]string{{"Group_1_X_size_1", "0.5", "1", "1"}}, res.Frame.Rows)
	assert.Equal(t, []string{"A"}, res.Entities)
	assert.Empty(t, res.Warnings)
}

func TestProject_SizeRangeInclusive(t *testing.T) {
	f, _ := newFilter()
	sel := table.NewSelection([]string{"A", "B"}, nil, &table.SizeRange{Min: 2, Max: 3})

	res, err := f.Project(context.Background(), table.KindMu, sel)
	require.NoError(t, err)

	designs, _ := res.Frame.Column("design")
	assert.Equal(t, []string{"Group_2_Y_size_2", "Group_1_Z_size_3"}, designs, "row with size == max is kept, order preserved")
}

func TestProject_NoSizeRangeKeepsAll(t *testing.T) {
	f, _ := newFilter()
	res, err := f.Project(context.Background(), table.KindMu, table.NewSelection([]string{"B"}, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Frame.Len())
}

func TestProject_EmptySelectionShortCircuits(t *testing.T) {
	f, store := newFilter()

	for _, kind := range table.Kinds() {
		res, err := f.Project(context.Background(), kind, table.NewSelection(nil, []string{"1"}, nil))
		require.NoError(t, err)
		assert.False(t, res.Loaded)
		assert.True(t, res.Empty())
		assert.Empty(t, res.UsedColumns)
	}

	for _, src := range store.Sources {
		assert.Zero(t, src.Loads())
		assert.Zero(t, src.HeaderReads())
	}
}

func TestProject_MissingEntityWarns(t *testing.T) {
	f, store := newFilter()
	res, err := f.Project(context.Background(), table.KindMu, table.NewSelection([]string{"A", "a", "NOPE"}, nil, nil))
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, apperrors.CodeColumnNotFound, res.Warnings[0].Code)
	assert.Equal(t, []string{"a", "NOPE"}, res.Warnings[0].Names)
	assert.Equal(t, []string{"design", "A", "group", "size"}, store.Sources[table.KindMu].LastColumns())
}

func TestProject_PhiExpandsGenes(t *testing.T) {
	f, store := newFilter()
	res, err := f.Project(context.Background(), table.KindPhi, table.NewSelection([]string{"A"}, nil, nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"design", "A_AAA", "A_GGG", "group", "size"}, res.UsedColumns)
	assert.Equal(t, []string{"A_AAA", "A_GGG"}, res.Entities)
	assert.Equal(t, res.UsedColumns, store.Sources[table.KindPhi].LastColumns())
	assert.Empty(t, res.Warnings)
}

func TestProject_PhiNoSgRNA(t *testing.T) {
	f, _ := newFilter()
	res, err := f.Project(context.Background(), table.KindPhi, table.NewSelection([]string{"Z"}, nil, nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"design", "group", "size"}, res.UsedColumns)
	assert.Empty(t, res.Entities)
	assert.Equal(t, 3, res.Frame.Len())
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, []string{"Z"}, res.Warnings[0].Names)
}

func TestProject_EmptyResultIsNotAnError(t *testing.T) {
	f, _ := newFilter()
	res, err := f.Project(context.Background(), table.KindMu, table.NewSelection([]string{"A"}, []string{"9"}, nil))
	require.NoError(t, err)
	assert.True(t, res.Empty())
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, apperrors.CodeEmptyResult, res.Warnings[0].Code)
}

func TestProject_BadSizeIsSchemaError(t *testing.T) {
	mu := testkit.NewMemorySource("mu.csv",
		[]string{"design", "A", "group", "size"},
		[][]string{{"d1", "1", "1", "three"}})
	f := NewFilter(testkit.NewMemoryStore(mu, testkit.ExamplePhi()), nil)

	_, err := f.Project(context.Background(), table.KindMu, table.NewSelection([]string{"A"}, nil, &table.SizeRange{Min: 1, Max: 3}))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSchema)
	assert.Equal(t, apperrors.CodeSchemaError, apperrors.GetCode(err))
}

func TestProject_InvertedRange(t *testing.T) {
	f, _ := newFilter()
	_, err := f.Project(context.Background(), table.KindMu, table.NewSelection([]string{"A"}, nil, &table.SizeRange{Min: 3, Max: 1}))
	assert.ErrorIs(t, err, core.ErrInvalidSizeRange)
}

func TestProject_ShortHeader(t *testing.T) {
	mu := testkit.NewMemorySource("mu.csv", []string{"design", "size"}, nil)
	f := NewFilter(testkit.NewMemoryStore(mu, testkit.ExamplePhi()), nil)

	_, err := f.Project(context.Background(), table.KindMu, table.NewSelection([]string{"A"}, nil, nil))
	assert.ErrorIs(t, err, core.ErrSchema)
}

func TestProject_Cancelled(t *testing.T) {
	f, _ := newFilter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Project(ctx, table.KindMu, table.NewSelection([]string{"A"}, nil, nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProject_Fingerprint(t *testing.T) {
	f, _ := newFilter()
	ctx := context.Background()
	project := func(groups []string, sizes *table.SizeRange) *Result {
		res, err := f.Project(ctx, table.KindMu, table.NewSelection([]string{"A"}, groups, sizes))
		require.NoError(t, err)
		return res
	}

	a := project([]string{"1", "2"}, nil)
	assert.False(t, core.Hash(a.Fingerprint).IsEmpty())
	assert.Equal(t, a.Fingerprint, project([]string{"2", "1"}, nil).Fingerprint, "group order is irrelevant")
	assert.NotEqual(t, a.Fingerprint, project([]string{"1"}, nil).Fingerprint)
	assert.NotEqual(t, a.Fingerprint, project([]string{"1", "2"}, &table.SizeRange{Min: 1, Max: 3}).Fingerprint)
}
