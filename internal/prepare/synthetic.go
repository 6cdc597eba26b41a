package prepare

import (
	"context"
	"os"
	"path/filepath"

	"genexplorer/adapters/excel"
	"genexplorer/domain/table"
	"genexplorer/internal"
	apperrors "genexplorer/internal/errors"
	"genexplorer/internal/testkit"

	"golang.org/x/sync/errgroup"
)

// GenerateSynthetic writes a prepared mu/phi pair built from the screen
// generator into dir and returns their locations. Raw tables are written
// with qualified names and passed through Prepare like real exports.
func GenerateSynthetic(ctx context.Context, dir string, cfg testkit.ScreenGeneratorConfig, logger *internal.Logger) (excel.SourceConfig, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return excel.SourceConfig{}, apperrors.Wrapf(err, "failed to create %s", dir)
	}

	cfg.QualifiedNames = true
	gen := testkit.NewScreenDataGenerator(cfg)
	names := excel.DefaultSourceConfig()
	out := excel.SourceConfig{
		MuPath:  filepath.Join(dir, names.MuPath),
		PhiPath: filepath.Join(dir, names.PhiPath),
	}

	jobs := []struct {
		kind table.Kind
		raw  testkit.RawTable
		path string
	}{
		{table.KindMu, gen.GenerateMu(), out.MuPath},
		{table.KindPhi, gen.GeneratePhi(), out.PhiPath},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			rawPath := filepath.Join(dir, "raw_"+string(job.kind)+".csv")
			if err := testkit.WriteCSV(rawPath, job.raw.Header, job.raw.Rows); err != nil {
				return apperrors.Wrapf(err, "failed to write %s", rawPath)
			}
			defer os.Remove(rawPath)
			_, err := PrepareFile(gctx, job.kind, rawPath, job.path, logger)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return excel.SourceConfig{}, err
	}
	return out, nil
}
