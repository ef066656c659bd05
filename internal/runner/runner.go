package runner

import (
	"context"
	"io"
	"math/rand"
	"os"
	"sync"

	"jqgen/internal/config"
	"jqgen/internal/expander"
	"jqgen/internal/feasibility"
	"jqgen/internal/generator"
	"jqgen/internal/report"
	"jqgen/internal/schema"
	"jqgen/internal/uploader"
	"jqgen/internal/util"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Runner drives template generation, expansion and output for one run.
type Runner struct {
	cfg      config.Config
	feas     *feasibility.Feasibility
	workbook *report.Workbook
	uploader uploader.Uploader
	// out receives the summary table.
	out io.Writer

	statsMu   sync.Mutex
	templates int
	queries   int
	warnings  int

	collection     string
	archiveName    string
	archiveCodec   string
	uploadLocation string
}

// New loads the feasibility matrix and prepares the uploader for cfg.
func New(cfg config.Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m, err := loadMatrix(cfg.MatrixFile)
	if err != nil {
		return nil, err
	}
	feas, err := feasibility.New(m, feasibility.DefaultCatalog())
	if err != nil {
		return nil, err
	}
	var up uploader.Uploader = uploader.NoopUploader{}
	if !cfg.PrintOnly {
		up, err = uploader.New(cfg.Storage)
		if err != nil {
			return nil, err
		}
	}
	return &Runner{cfg: cfg, feas: feas, uploader: up, out: os.Stdout}, nil
}

func loadMatrix(path string) (*feasibility.Matrix, error) {
	if path == "" {
		return feasibility.DefaultMatrix()
	}
	return feasibility.LoadMatrix(path)
}

// Run generates every template of the configured mode. Templates already written
// stay on disk when a later one fails.
func (r *Runner) Run(ctx context.Context) error {
	util.Infof("runner start mode=%s seed=%d workers=%d", r.cfg.Mode, r.cfg.Seed, r.cfg.Workers)
	if !r.cfg.PrintOnly {
		wb, err := report.Open(r.cfg)
		if err != nil {
			return err
		}
		r.workbook = wb
		util.Detailf("workbook %s run_id=%s", wb.Dir, wb.RunID)
	}

	var err error
	switch r.cfg.Mode {
	case config.ModeSchema:
		err = r.runSchema(ctx)
	case config.ModeStandalone:
		err = r.runStandalone()
	}
	if err != nil {
		return err
	}
	return r.finish(ctx)
}

func (r *Runner) runSchema(ctx context.Context) error {
	desc, err := schema.LoadDescription(r.cfg.SchemaFile)
	if err != nil {
		return err
	}
	query, err := config.LoadQuery(r.cfg.QueryFile, r.feas.Catalog)
	if err != nil {
		return err
	}
	if r.cfg.Collection != "" && r.cfg.Collection != query.Collection {
		util.Warnf("collection %q from the query config is overridden by %q", query.Collection, r.cfg.Collection)
		query.Collection = r.cfg.Collection
	}
	r.collection = query.Collection

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i := 0; i < query.NumberOfDifferentQueries; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return r.buildTemplate(i, query, desc)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// buildTemplate composes and expands template i. Each template draws from its own
// source seeded with seed+i, so the output does not depend on the worker count.
func (r *Runner) buildTemplate(i int, query config.QueryConfig, desc schema.Description) error {
	rnd := rand.New(rand.NewSource(r.cfg.Seed + int64(i)))
	gen := generator.New(rnd, query, desc, r.feas)
	tmpl, err := gen.Build()
	if err != nil {
		return errors.Wrapf(err, "template %d", i)
	}
	sc := tmpl.Standalone(query.CombinationsPerQuery)
	queries, err := expander.Expand(sc, rnd)
	if err != nil {
		return errors.Wrapf(err, "expand template %d", i)
	}
	warnings := make([]string, 0, len(tmpl.Warnings))
	for _, w := range tmpl.Warnings {
		warnings = append(warnings, w.String())
	}
	return r.emit(report.TemplateName(r.cfg.QueryBaseName, i), &sc, queries, warnings)
}

func (r *Runner) runStandalone() error {
	sc, err := config.LoadStandalone(r.cfg.StandaloneFile)
	if err != nil {
		return err
	}
	sc.Placeholders = sc.WithDefaults(r.feas.Catalog.StandardPlaceholders())
	queries, err := expander.Expand(sc, rand.New(rand.NewSource(r.cfg.Seed)))
	if err != nil {
		return errors.Wrapf(err, "expand %s", r.cfg.StandaloneFile)
	}
	return r.emit(r.cfg.QueryBaseName, nil, queries, nil)
}

// emit prints and writes the statements of one template.
func (r *Runner) emit(name string, sc *config.StandaloneConfig, queries []string, warnings []string) error {
	if r.cfg.PrintQueries || r.cfg.PrintOnly {
		for j, sql := range queries {
			util.Infof("%s :\n%s", report.QueryName(name, j), sql)
		}
	}
	if r.workbook != nil {
		if _, err := r.workbook.WriteTemplate(name, sc, queries, warnings); err != nil {
			return errors.Wrapf(err, "write %s", name)
		}
	}
	r.statsMu.Lock()
	r.templates++
	r.queries += len(queries)
	r.warnings += len(warnings)
	r.statsMu.Unlock()
	util.Detailf("template %s queries=%d warnings=%d", name, len(queries), len(warnings))
	return nil
}
