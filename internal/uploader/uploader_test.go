package uploader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cfg "jqgen/internal/config"
)

func TestNewWithoutBackendIsNoop(t *testing.T) {
	u, err := New(cfg.StorageConfig{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if u.Enabled() {
		t.Fatalf("expected disabled uploader")
	}
	loc, err := u.UploadDir(context.Background(), t.TempDir())
	if err != nil || loc != "" {
		t.Fatalf("loc=%q err=%v", loc, err)
	}
}

func writeWorkbook(t *testing.T, names ...string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "wb1")
	for _, name := range names {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func TestWorkbookFilesKeysAndOrder(t *testing.T) {
	root := writeWorkbook(t, "summary.json", "queries/query_0_0.sql", "queries/query_0.json", "queries.tar.zst", "data/.keep")
	files, err := workbookFiles(root, "/bench/runs/")
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	want := []workbookFile{
		{filepath.Join(root, "data", ".keep"), "bench/runs/wb1/data/.keep", "application/octet-stream"},
		{filepath.Join(root, "queries.tar.zst"), "bench/runs/wb1/queries.tar.zst", "application/zstd"},
		{filepath.Join(root, "queries", "query_0.json"), "bench/runs/wb1/queries/query_0.json", "application/json"},
		{filepath.Join(root, "queries", "query_0_0.sql"), "bench/runs/wb1/queries/query_0_0.sql", "application/sql"},
		{filepath.Join(root, "summary.json"), "bench/runs/wb1/summary.json", "application/json"},
	}
	if len(files) != len(want) {
		t.Fatalf("files=%v", files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("file %d = %+v, want %+v", i, files[i], want[i])
		}
	}
}

func TestUploadWorkbookLocation(t *testing.T) {
	root := writeWorkbook(t, "summary.json", "queries/query_0_0.sql")
	var keys []string
	put := func(_ context.Context, f workbookFile) error {
		keys = append(keys, f.Key)
		return nil
	}
	loc, err := uploadWorkbook(context.Background(), "s3", "bucket", "", root, put)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if loc != "s3://bucket/wb1/" {
		t.Fatalf("loc=%q", loc)
	}
	if len(keys) != 2 || keys[1] != "wb1/summary.json" {
		t.Fatalf("keys=%v", keys)
	}
}

func TestUploadWorkbookStops(t *testing.T) {
	root := writeWorkbook(t, "summary.json", "queries/query_0_0.sql")
	failing := func(_ context.Context, f workbookFile) error {
		return errors.New("denied")
	}
	if _, err := uploadWorkbook(context.Background(), "gs", "bucket", "p", root, failing); err == nil || !strings.Contains(err.Error(), "p/wb1/queries/query_0_0.sql") {
		t.Fatalf("expected failing key in error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	counting := func(_ context.Context, f workbookFile) error {
		calls++
		return nil
	}
	if _, err := uploadWorkbook(ctx, "gs", "bucket", "p", root, counting); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("calls=%d", calls)
	}
}
