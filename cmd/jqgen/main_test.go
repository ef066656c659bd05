package main

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"jqgen/internal/errs"

	"github.com/spf13/cobra"
)

func TestMatrixCommandPrintsTables(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"matrix"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"abs", "concat", "number,number"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, out.String())
		}
	}
}

func TestFlagsOverrideRunConfig(t *testing.T) {
	dir := t.TempDir()
	runCfg := filepath.Join(dir, "run.yaml")
	if err := os.WriteFile(runCfg, []byte("seed: 5\nworkers: 2\nworkbook: fromfile\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cmd := &cobra.Command{Use: "schema"}
	opts := &options{}
	bindFlags(cmd, opts)
	if err := cmd.ParseFlags([]string{"--run-config", runCfg, "--workers", "8", "-w", "/wb/"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 5 {
		t.Fatalf("seed=%d", cfg.Seed)
	}
	if cfg.Workers != 8 {
		t.Fatalf("workers=%d", cfg.Workers)
	}
	if cfg.Workbook != "wb" {
		t.Fatalf("workbook=%q", cfg.Workbook)
	}
}

func TestSchemaCommandNeedsBothFiles(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"schema", "only-one.json"})
	if err := root.Execute(); !errs.IsConfig(err) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestShutdownSignalsCancelRun(t *testing.T) {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()
	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("SIGTERM did not cancel the run context")
	}
}
