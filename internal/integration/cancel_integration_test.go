package integration

import (
	"context"
	"io"
	"testing"
	"time"

	"kmerx/internal/app"
)

func TestCtrlC_DuringSearch_Exit130(t *testing.T) {
	e := newEnv(t)
	e.init(t)
	e.tools["search"] = e.tools["slow"]

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	code := app.RunContext(ctx, append([]string{"--mode", "search", "-i", e.prefix, "--input-kmer", "GATTACA"}, e.engineFlags()...), io.Discard, io.Discard)
	if code != 130 {
		t.Fatalf("expected exit 130 on cancel, got %d", code)
	}
	if time.Since(start) > 10*time.Second {
		t.Fatalf("cancel did not stop the running tool")
	}
}

func TestToolTimeout(t *testing.T) {
	e := newEnv(t)
	e.init(t)
	e.tools["search"] = e.tools["slow"]
	code, _, stderr := e.run(t, "--mode", "search", "-i", e.prefix, "--input-kmer", "GATTACA", "--tool-timeout", "100ms")
	if code != 2 {
		t.Fatalf("want exit 2 on timeout, got %d: %s", code, stderr)
	}
}
