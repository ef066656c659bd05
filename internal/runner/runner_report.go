package runner

import (
	"context"
	"strconv"

	"jqgen/internal/report"
	"jqgen/internal/runinfo"
	"jqgen/internal/util"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
)

// finish archives, records and uploads the workbook, then prints the run summary.
func (r *Runner) finish(ctx context.Context) error {
	defer r.writeSummaryTable()
	if r.workbook == nil {
		return nil
	}
	if r.cfg.Archive {
		name, codec, err := r.workbook.WriteArchive()
		if err != nil {
			return errors.Wrap(err, "archive queries")
		}
		r.archiveName, r.archiveCodec = name, codec
	}
	summary := report.Summary{
		Mode:           string(r.cfg.Mode),
		Seed:           r.cfg.Seed,
		SchemaFile:     r.cfg.SchemaFile,
		QueryFile:      r.cfg.QueryFile,
		StandaloneFile: r.cfg.StandaloneFile,
		Collection:     r.collection,
		ArchiveName:    r.archiveName,
		ArchiveCodec:   r.archiveCodec,
		Run:            runinfo.FromEnv(),
	}
	if err := r.workbook.WriteSummary(summary); err != nil {
		return errors.Wrap(err, "write summary")
	}
	if !r.uploader.Enabled() {
		return nil
	}
	loc, err := r.uploader.UploadDir(ctx, r.workbook.Dir)
	if err != nil {
		return errors.Wrap(err, "upload workbook")
	}
	r.uploadLocation = loc
	util.Highlightf("workbook uploaded to %s", loc)
	return nil
}

// writeSummaryTable prints the inputs, the output location and the counts of the run.
func (r *Runner) writeSummaryTable() {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	t.SetTitle("SUMMARY")
	t.AppendHeader(table.Row{"Item", "Value"})
	if r.cfg.SchemaFile != "" {
		t.AppendRow(table.Row{"schema config", r.cfg.SchemaFile})
	}
	if r.cfg.QueryFile != "" {
		t.AppendRow(table.Row{"query config", r.cfg.QueryFile})
	}
	if r.cfg.StandaloneFile != "" {
		t.AppendRow(table.Row{"standalone config", r.cfg.StandaloneFile})
	}
	output := "(print only)"
	if r.workbook != nil {
		output = r.workbook.Dir
	}
	t.AppendRow(table.Row{"files written to", output})

	r.statsMu.Lock()
	t.AppendRow(table.Row{"templates", strconv.Itoa(r.templates)})
	t.AppendRow(table.Row{"queries", strconv.Itoa(r.queries)})
	t.AppendRow(table.Row{"warnings", strconv.Itoa(r.warnings)})
	r.statsMu.Unlock()

	if r.archiveName != "" {
		t.AppendRow(table.Row{"archive", r.archiveName})
	}
	if r.uploadLocation != "" {
		t.AppendRow(table.Row{"upload", r.uploadLocation})
	}
	t.Render()
}
