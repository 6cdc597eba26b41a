package plot

import (
	"bytes"
	"path/filepath"
	"testing"

	"genexplorer/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func muFrame() *table.Frame {
	return &table.Frame{
		Kind:    table.KindMu,
		Columns: []string{"design", "A", "group", "size"},
		Rows: [][]string{
			{"d1", "1.0", "1", "10"},
			{"d2", "2.0", "2", "2"},
			{"d3", "3.0", "1", "3"},
			{"d4", "4.0", "1", "2"},
			{"d5", "5.0", "10", "2"},
			{"d6", "", "1", "3"},
		},
	}
}

func TestSortSizes(t *testing.T) {
	assert.Equal(t, []string{"2", "3", "10"}, SortSizes([]string{"2", "10", "3"}))
	assert.Equal(t, []string{"1", "12", "abc", "x"}, SortSizes([]string{"x", "12", "abc", "1"}))
}

func TestBuildBoxPlot_Mu(t *testing.T) {
	spec := BuildBoxPlot(muFrame(), "A", table.KindMu)

	require.False(t, spec.Placeholder())
	assert.Equal(t, "Expression of A across cell lines", spec.Title)
	assert.Equal(t, "Number of Replicates", spec.XAxisTitle)
	assert.Equal(t, []string{"2", "3", "10"}, spec.Categories, "numeric, not lexicographic")
	assert.Equal(t, []string{"1", "2", "10"}, spec.Groups)
	assert.False(t, spec.ShowLegend)

	var order [][2]string
	for _, b := range spec.Boxes {
		order = append(order, [2]string{b.Category, b.Group})
	}
	assert.Equal(t, [][2]string{{"2", "1"}, {"2", "2"}, {"2", "10"}, {"3", "1"}, {"10", "1"}}, order)

	b, ok := spec.Box("3", "1")
	require.True(t, ok)
	assert.Equal(t, []Point{{Value: 3, Design: "d3"}}, b.Points, "empty cells are skipped")
}

func TestBuildBoxPlot_PhiIgnoresGroup(t *testing.T) {
	frame := muFrame()
	frame.Kind = table.KindPhi
	spec := BuildBoxPlot(frame, "A", table.KindPhi)

	require.False(t, spec.Placeholder())
	assert.Equal(t, "Activity of sgRNA A across cell lines", spec.Title)
	assert.Equal(t, []string{""}, spec.Groups)
	assert.False(t, spec.ShowLegend, "a single uncoloured series has no legend")
	require.Len(t, spec.Boxes, 3)

	b, ok := spec.Box("2", "")
	require.True(t, ok)
	assert.Len(t, b.Points, 3)
	assert.Equal(t, 2.0, b.Stats.Min)
	assert.Equal(t, 5.0, b.Stats.Max)
}

func TestBuildBoxPlot_Placeholders(t *testing.T) {
	tests := []struct {
		name    string
		frame   *table.Frame
		entity  string
		kind    table.Kind
		message string
	}{
		{"no entity", muFrame(), "", table.KindMu, "Select a gene to visualize"},
		{"no rows", table.NewFrame(table.KindPhi, []string{"design", "X", "group", "size"}), "X", table.KindPhi, "Select an sgRNA to visualize"},
		{"nil frame", nil, "A", table.KindMu, "Select a gene to visualize"},
		{"unknown entity", muFrame(), "B", table.KindMu, "B is not in the filtered table"},
		{"no size column", &table.Frame{Columns: []string{"design", "A", "group", "n"}, Rows: [][]string{{"d", "1", "1", "1"}}}, "A", table.KindMu, "Data does not contain group or size information"},
		{"all values missing", &table.Frame{Columns: []string{"design", "A", "group", "size"}, Rows: [][]string{{"d", "nan", "1", "1"}}}, "A", table.KindMu, "No numeric values for A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := BuildBoxPlot(tt.frame, tt.entity, tt.kind)
			assert.True(t, spec.Placeholder())
			assert.Equal(t, tt.message, spec.Message)
			assert.Empty(t, spec.Boxes)
		})
	}
}

func TestBuildBoxPlot_GroupsSortNumerically(t *testing.T) {
	frame := &table.Frame{
		Columns: []string{"design", "A", "group", "size"},
		Rows: [][]string{
			{"d1", "1", "10", "1"},
			{"d2", "2", "2", "1"},
			{"d3", "3", "1", "1"},
		},
	}
	spec := BuildBoxPlot(frame, "A", table.KindMu)
	assert.Equal(t, []string{"1", "2", "10"}, spec.Groups, "first-seen order is 10, 2, 1")
}

func TestBuildBoxPlot_MissingGroupLabel(t *testing.T) {
	frame := &table.Frame{
		Columns: []string{"design", "A", "group", "size"},
		Rows:    [][]string{{"d1", "1", "", "1"}, {"d2", "2", "1", "1.0"}},
	}
	spec := BuildBoxPlot(frame, "A", table.KindMu)
	assert.Equal(t, []string{"1"}, spec.Categories)
	assert.ElementsMatch(t, []string{"1", NoGroupLabel}, spec.Groups)
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(BuildBoxPlot(muFrame(), "A", table.KindMu), &buf))
	assert.Contains(t, buf.String(), "Expression of A across cell lines")
	assert.Contains(t, buf.String(), "d5")

	buf.Reset()
	require.NoError(t, RenderHTML(BuildBoxPlot(nil, "", table.KindPhi), &buf))
	assert.Contains(t, buf.String(), "Select an sgRNA to visualize")
}

func TestRenderImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderImage(BuildBoxPlot(muFrame(), "A", table.KindMu), &buf, "png"))
	assert.Equal(t, []byte("\x89PNG"), buf.Bytes()[:4])

	path := filepath.Join(t.TempDir(), "a.svg")
	require.NoError(t, SaveImage(BuildBoxPlot(muFrame(), "A", table.KindMu), path))
	assert.FileExists(t, path)
}
