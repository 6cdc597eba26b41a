package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"genexplorer/adapters/excel"
	"genexplorer/domain/core"
	"genexplorer/domain/table"
	"genexplorer/internal"
	apperrors "genexplorer/internal/errors"
	"genexplorer/internal/export"
	"genexplorer/internal/mapping"
	"genexplorer/internal/metrics"
	"genexplorer/internal/plot"
	"genexplorer/internal/projection"
	"genexplorer/internal/schema"
	"genexplorer/internal/session"
	"genexplorer/ports"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// DefaultGenePageSize bounds the gene list when no search is given
const DefaultGenePageSize = 100

// GroupOption is one entry of the group selector
type GroupOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FilterResult is what one applied filter returns to the caller
type FilterResult struct {
	RequestID string             `json:"request_id"`
	Mu        *projection.Result `json:"mu"`
	Phi       *projection.Result `json:"phi"`
}

// Warnings merges the warnings of both tables
func (r *FilterResult) Warnings() []table.Warning {
	var out []table.Warning
	if r.Mu != nil {
		out = append(out, r.Mu.Warnings...)
	}
	if r.Phi != nil {
		out = append(out, r.Phi.Warnings...)
	}
	return out
}

// ExportFile is a rendered download
type ExportFile struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	// ETag changes whenever the projection or format changes
	ETag string `json:"etag"`
	Data []byte `json:"-"`
}

// GeneDiagnosis is a gene traced through both tables
type GeneDiagnosis struct {
	mapping.Diagnosis
	Traceable bool     `json:"traceable"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ExplorerService runs the explorer operations against a table store
type ExplorerService struct {
	store    ports.TableStore
	cache    ports.HeaderCache
	filter   *projection.Filter
	sessions *session.Manager
	metrics  *metrics.Metrics
	logger   *internal.Logger
	pageSize int
}

// ExplorerOption customizes an ExplorerService
type ExplorerOption func(*ExplorerService)

// WithHeaderCache serves headers from cache
func WithHeaderCache(cache ports.HeaderCache) ExplorerOption {
	return func(s *ExplorerService) { s.cache = cache }
}

// WithMetrics records activity on m
func WithMetrics(m *metrics.Metrics) ExplorerOption {
	return func(s *ExplorerService) { s.metrics = m }
}

// WithLogger sets the service logger
func WithLogger(l *internal.Logger) ExplorerOption {
	return func(s *ExplorerService) { s.logger = l }
}

// WithGenePageSize bounds unfiltered gene lists
func WithGenePageSize(n int) ExplorerOption {
	return func(s *ExplorerService) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithSessions shares a session manager
func WithSessions(m *session.Manager) ExplorerOption {
	return func(s *ExplorerService) { s.sessions = m }
}

// NewExplorerService creates the service
func NewExplorerService(store ports.TableStore, opts ...ExplorerOption) *ExplorerService {
	s := &ExplorerService{
		store:    store,
		sessions: session.NewManager(),
		logger:   internal.NewNopLogger(),
		pageSize: DefaultGenePageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.filter = projection.NewFilter(store, s.cache)
	return s
}

// Sessions returns the session manager
func (s *ExplorerService) Sessions() *session.Manager {
	return s.sessions
}

func (s *ExplorerService) loadSchema(ctx context.Context, kind table.Kind) (ports.TableSource, table.Schema, error) {
	src, err := s.store.Source(kind)
	if err != nil {
		return nil, table.Schema{}, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	sch, err := schema.Load(ctx, src, s.cache)
	if err != nil {
		return nil, table.Schema{}, err
	}
	return src, sch, nil
}

// ListGenes returns the gene table's entity names matching search
// (case-insensitive substring). Without a search the first page of genes is
// returned. Genes in current are always kept, appended after the matches.
func (s *ExplorerService) ListGenes(ctx context.Context, search string, current []string) ([]string, error) {
	_, sch, err := s.loadSchema(ctx, table.KindMu)
	if err != nil {
		return nil, err
	}

	var genes []string
	if search = strings.TrimSpace(search); search != "" {
		needle := strings.ToLower(search)
		for _, g := range sch.Entities {
			if strings.Contains(strings.ToLower(g), needle) {
				genes = append(genes, g)
			}
		}
	} else {
		n := s.pageSize
		if n > len(sch.Entities) {
			n = len(sch.Entities)
		}
		genes = append(genes, sch.Entities[:n]...)
	}

	listed := make(map[string]struct{}, len(genes))
	for _, g := range genes {
		listed[g] = struct{}{}
	}
	for _, g := range current {
		if _, ok := listed[g]; !ok {
			listed[g] = struct{}{}
			genes = append(genes, g)
		}
	}
	if genes == nil {
		genes = []string{}
	}
	return genes, nil
}

func (s *ExplorerService) loadMeta(ctx context.Context) (groups, sizes []string, err error) {
	src, sch, err := s.loadSchema(ctx, table.KindMu)
	if err != nil {
		return nil, nil, err
	}
	rows, err := src.LoadColumns(ctx, []string{sch.GroupCol, sch.SizeCol}, nil)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to load group and size columns")
	}
	groups = make([]string, len(rows))
	sizes = make([]string, len(rows))
	for i, r := range rows {
		groups[i], sizes[i] = r[0], r[1]
	}
	return groups, sizes, nil
}

// ListGroups returns the distinct non-empty groups of the gene table in
// first-seen order
func (s *ExplorerService) ListGroups(ctx context.Context) ([]GroupOption, error) {
	groups, _, err := s.loadMeta(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	out := []GroupOption{}
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g == "" || isNull(g) {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, GroupOption{Label: "Group " + g, Value: g})
	}
	return out, nil
}

func isNull(cell string) bool {
	switch strings.ToLower(cell) {
	case "nan", "na", "null", "none":
		return true
	}
	return false
}

// SizeRange returns the observed [min, max] replicate count of the gene table
func (s *ExplorerService) SizeRange(ctx context.Context) (table.SizeRange, error) {
	_, sizes, err := s.loadMeta(ctx)
	if err != nil {
		return table.SizeRange{}, err
	}

	values := make(stats.Float64Data, 0, len(sizes))
	for i, cell := range sizes {
		n, ok := table.Int(cell)
		if !ok {
			return table.SizeRange{}, apperrors.WithCode(apperrors.CodeSchemaError, core.NewBadSizeError(i+1, cell))
		}
		values = append(values, float64(n))
	}
	if len(values) == 0 {
		return table.SizeRange{}, apperrors.WithCode(apperrors.CodeEmptyResult, core.ErrEmptyResult)
	}

	lo, err := values.Min()
	if err != nil {
		return table.SizeRange{}, apperrors.Wrap(err, "size minimum")
	}
	hi, err := values.Max()
	if err != nil {
		return table.SizeRange{}, apperrors.Wrap(err, "size maximum")
	}
	return table.SizeRange{Min: int(lo), Max: int(hi)}, nil
}

func (s *ExplorerService) project(ctx context.Context, kind table.Kind, sel table.Selection) (*projection.Result, error) {
	start := time.Now()
	res, err := s.filter.Project(ctx, kind, sel)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.ObserveProjection(string(kind), "error", 0, elapsed)
		return nil, err
	}

	outcome := "ok"
	switch {
	case !res.Loaded:
		outcome = "skipped"
	case res.Empty():
		outcome = "empty"
	}
	s.metrics.ObserveProjection(string(kind), outcome, res.Frame.Len(), elapsed)
	for _, w := range res.Warnings {
		s.metrics.Warning(w.Code)
		s.logger.Warn("[ExplorerService] %s: %s", kind, w.Message)
	}
	s.logger.Debug("[ExplorerService] %s projection: %d columns, %d rows in %s", kind, len(res.UsedColumns), res.Frame.Len(), elapsed)
	return res, nil
}

// ApplyFilter projects both tables for sel and commits the results to the
// session. A newer ApplyFilter on the same session cancels this one, which
// then returns core.ErrSuperseded without touching session state.
func (s *ExplorerService) ApplyFilter(ctx context.Context, sessionID string, sel table.Selection) (*FilterResult, error) {
	sess := s.sessions.Get(sessionID)
	req := sess.Begin(ctx)
	defer req.Release()

	var mu, phi *projection.Result
	g, gctx := errgroup.WithContext(req.Context())
	g.Go(func() error {
		r, err := s.project(gctx, table.KindMu, sel)
		mu = r
		return err
	})
	g.Go(func() error {
		r, err := s.project(gctx, table.KindPhi, sel)
		phi = r
		return err
	})

	if err := g.Wait(); err != nil {
		if req.Context().Err() != nil && ctx.Err() == nil {
			s.metrics.Superseded()
			return nil, core.ErrSuperseded
		}
		return nil, err
	}

	snap, err := sess.Commit(req, sel, mu, phi)
	if err != nil {
		s.metrics.Superseded()
		return nil, err
	}
	s.logger.Info("[ExplorerService] session %s committed filter %s: mu=%d rows, phi=%d rows",
		sess.ID, snap.RequestID, mu.Frame.Len(), phi.Frame.Len())
	return &FilterResult{RequestID: snap.RequestID, Mu: mu, Phi: phi}, nil
}

// PlotEntity builds the box plot of entity from the session's last filtered
// table of kind. Before any filter it returns the placeholder prompt.
func (s *ExplorerService) PlotEntity(sessionID string, kind table.Kind, entity string) (plot.Spec, error) {
	kind, err := table.ParseKind(string(kind))
	if err != nil {
		return plot.Spec{}, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}

	var frame *table.Frame
	res, err := s.sessions.Get(sessionID).Snapshot().Result(kind)
	switch {
	case err == nil:
		frame = res.Frame
	case !errors.Is(err, core.ErrNoFilterApplied):
		return plot.Spec{}, err
	}

	spec := plot.BuildBoxPlot(frame, entity, kind)
	s.metrics.Plot(string(kind), spec.Placeholder())
	return spec, nil
}

// ExportTable renders the session's last filtered table of kind. An empty
// or missing table returns core.ErrNothingToExport.
func (s *ExplorerService) ExportTable(sessionID string, kind table.Kind, format string) (*ExportFile, error) {
	kind, err := table.ParseKind(string(kind))
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, err)
	}
	if format == "" {
		format = FormatCSV
	}

	res, err := s.sessions.Get(sessionID).Snapshot().Result(kind)
	if errors.Is(err, core.ErrNoFilterApplied) {
		return nil, core.ErrNothingToExport
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	out := &ExportFile{}
	switch strings.ToLower(format) {
	case FormatCSV:
		err = export.WriteCSV(res.Frame, &buf)
		out.FileName = export.FileName(kind)
		out.ContentType = "text/csv"
	case FormatXLSX:
		err = excel.WriteXLSX(res.Frame, &buf)
		out.FileName = excel.XLSXFileName(kind)
		out.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, err
	}

	out.Data = buf.Bytes()
	out.ETag = core.Hash(res.Fingerprint).Short() + "-" + strings.ToLower(format)
	s.metrics.Export(string(kind), strings.ToLower(format))
	s.logger.Info("[ExplorerService] exported %s (%d rows) as %s", kind, res.Frame.Len(), out.FileName)
	return out, nil
}

// DiagnoseGene traces gene through both tables, reporting case mismatches
// and near misses instead of guessing
func (s *ExplorerService) DiagnoseGene(ctx context.Context, gene string) (*GeneDiagnosis, error) {
	gene = strings.TrimSpace(gene)
	if gene == "" {
		return nil, apperrors.InvalidInput("gene is required")
	}

	var mu, phi table.Schema
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		_, mu, err = s.loadSchema(gctx, table.KindMu)
		return err
	})
	g.Go(func() error {
		var err error
		_, phi, err = s.loadSchema(gctx, table.KindPhi)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := mapping.Diagnose(mu.Entities, mapping.BuildMapping(phi.Entities), gene)
	return &GeneDiagnosis{Diagnosis: d, Traceable: d.Traceable(), Warnings: d.Warnings()}, nil
}

// SelectionFromInput builds a selection from loosely formatted user input,
// trimming names and dropping blanks
func SelectionFromInput(genes, groups []string, sizes *table.SizeRange) table.Selection {
	return table.NewSelection(clean(genes), clean(groups), sizes)
}

func clean(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
