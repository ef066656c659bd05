package report

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"jqgen/internal/config"
	"jqgen/internal/errs"
	"jqgen/internal/runinfo"
	"jqgen/internal/util"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

const (
	QueriesDirName  = "queries"
	DataDirName     = "data"
	BenchConfigName = "config.json"
	SummaryName     = "summary.json"
	ArchiveName     = "queries.tar.zst"
	ArchiveCodec    = "zstd"
)

// Workbook writes standalone configs and SQL files for one run.
// WriteTemplate is safe for concurrent use.
type Workbook struct {
	RunID      string
	Dir        string
	QueriesDir string
	DataDir    string

	mu      sync.Mutex
	entries []Entry
}

// Entry records the files written for one template.
type Entry struct {
	Name     string   `json:"name"`
	Config   string   `json:"config,omitempty"`
	Queries  []string `json:"queries"`
	Warnings []string `json:"warnings,omitempty"`
}

// Summary is persisted as summary.json at the workbook root.
type Summary struct {
	RunID          string             `json:"run_id"`
	Mode           string             `json:"mode"`
	Seed           int64              `json:"seed"`
	SchemaFile     string             `json:"schema_file,omitempty"`
	QueryFile      string             `json:"query_file,omitempty"`
	StandaloneFile string             `json:"standalone_file,omitempty"`
	Collection     string             `json:"collection,omitempty"`
	Dir            string             `json:"dir"`
	Templates      int                `json:"templates"`
	Queries        int                `json:"queries"`
	Warnings       int                `json:"warnings"`
	Entries        []Entry            `json:"entries"`
	ArchiveName    string             `json:"archive_name,omitempty"`
	ArchiveCodec   string             `json:"archive_codec,omitempty"`
	Run            *runinfo.BasicInfo `json:"run,omitempty"`
	Timestamp      string             `json:"timestamp"`
}

// benchConfig seeds the benchmark driver configuration next to the queries.
var benchConfig = map[string]any{
	"run_insert_bench": true,
	"run_query_bench":  true,
	"user_counts":      []int{1, 5, 10},
	"batch_sizes":      []int{1000, 10000},
	"index_cfg": map[string]any{
		"collection1": []map[string]any{{"type": "int", "path": []string{"path", "to", "key1"}}},
		"collection2": []map[string]any{{"type": "string", "path": []string{"path", "to", "key2"}}},
	},
}

// Open prepares the output directory of cfg. A named workbook gets queries/ and data/
// subdirectories plus a benchmark config.json; an existing workbook is removed when
// cfg.Overwrite is set and is an error otherwise. Without a workbook, files go straight
// into the output directory.
func Open(cfg config.Config) (*Workbook, error) {
	w := &Workbook{RunID: newRunID(), Dir: cfg.WorkbookDir()}
	if cfg.Workbook == "" {
		w.QueriesDir = w.Dir
		if err := os.MkdirAll(w.Dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create output dir")
		}
		return w, nil
	}

	if _, err := os.Stat(w.Dir); err == nil {
		if !cfg.Overwrite {
			return nil, errs.Configf(w.Dir, "workbook %s exists", cfg.Workbook)
		}
		util.Warnf("removing existing workbook %s", w.Dir)
		if err := os.RemoveAll(w.Dir); err != nil {
			return nil, errors.Wrap(err, "remove workbook")
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "stat workbook")
	}

	w.QueriesDir = filepath.Join(w.Dir, QueriesDirName)
	w.DataDir = filepath.Join(w.Dir, DataDirName)
	for _, dir := range []string{w.QueriesDir, w.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create workbook")
		}
	}
	if err := writeJSON(filepath.Join(w.Dir, BenchConfigName), benchConfig); err != nil {
		return nil, err
	}
	return w, nil
}

func newRunID() string {
	if v7, err := uuid.NewV7(); err == nil {
		return v7.String()
	}
	return uuid.New().String()
}

// TemplateName is the file base of template i in schema mode.
func TemplateName(base string, i int) string {
	return fmt.Sprintf("%s_%d", base, i)
}

// QueryName is the file name of the j-th SQL statement of a template.
func QueryName(name string, j int) string {
	return fmt.Sprintf("%s_%d.sql", name, j)
}

// WriteTemplate writes <name>.json when sc is set and one <name>_<j>.sql per
// statement. Files of a template that fails half-way are removed again.
func (w *Workbook) WriteTemplate(name string, sc *config.StandaloneConfig, queries []string, warnings []string) (entry Entry, err error) {
	var written []string
	defer func() {
		if err == nil {
			return
		}
		for _, path := range written {
			if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
				util.Warnf("rollback %s failed: %v", path, rmErr)
			}
		}
	}()

	entry = Entry{Name: name, Queries: make([]string, 0, len(queries)), Warnings: warnings}
	if sc != nil {
		entry.Config = name + ".json"
		path := filepath.Join(w.QueriesDir, entry.Config)
		written = append(written, path)
		if err = writeJSON(path, sc); err != nil {
			return Entry{}, err
		}
	}
	for j, sql := range queries {
		file := QueryName(name, j)
		path := filepath.Join(w.QueriesDir, file)
		written = append(written, path)
		if err = os.WriteFile(path, []byte(sql), 0o644); err != nil {
			return Entry{}, errors.Wrapf(err, "write %s", file)
		}
		entry.Queries = append(entry.Queries, file)
	}

	w.mu.Lock()
	w.entries = append(w.entries, entry)
	w.mu.Unlock()
	return entry, nil
}

// Entries returns the written entries sorted by name.
func (w *Workbook) Entries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := append([]Entry(nil), w.entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// WriteSummary fills the bookkeeping fields of s and writes summary.json.
func (w *Workbook) WriteSummary(s Summary) error {
	s.RunID = w.RunID
	s.Dir = w.Dir
	s.Entries = w.Entries()
	s.Templates = len(s.Entries)
	s.Queries, s.Warnings = 0, 0
	for _, e := range s.Entries {
		s.Queries += len(e.Queries)
		s.Warnings += len(e.Warnings)
	}
	if s.Timestamp == "" {
		s.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return writeJSON(filepath.Join(w.Dir, SummaryName), s)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", filepath.Base(path))
	}
	defer util.CloseWithErr(f, "json output")
	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return errors.Wrapf(enc.Encode(v), "encode %s", filepath.Base(path))
}

// WriteArchive packs the queries directory into queries.tar.zst at the workbook root.
func (w *Workbook) WriteArchive() (name string, codec string, err error) {
	archivePath := filepath.Join(w.Dir, ArchiveName)
	if removeErr := os.Remove(archivePath); removeErr != nil && !os.IsNotExist(removeErr) {
		return "", "", removeErr
	}
	defer func() {
		if err != nil {
			_ = os.Remove(archivePath)
		}
	}()
	file, err := os.Create(archivePath)
	if err != nil {
		return "", "", err
	}
	defer util.CloseWithErr(file, "archive output")

	zw, err := zstd.NewWriter(file)
	if err != nil {
		return "", "", err
	}
	defer func() {
		if closeErr := zw.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	tw := tar.NewWriter(zw)
	defer func() {
		if closeErr := tw.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	walkErr := filepath.WalkDir(w.QueriesDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || path == archivePath {
			return nil
		}
		rel, err := filepath.Rel(w.QueriesDir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(filepath.Join(QueriesDirName, rel))
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		if _, err := io.Copy(tw, src); err != nil {
			util.CloseWithErr(src, "archive source")
			return err
		}
		util.CloseWithErr(src, "archive source")
		return nil
	})
	if walkErr != nil {
		return "", "", walkErr
	}
	return ArchiveName, ArchiveCodec, nil
}
