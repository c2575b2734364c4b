package errors

import (
	"bytes"
	stdErrors "errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	cases := map[string]struct {
		err  error
		want int
	}{
		"nil":          {nil, 0},
		"unclassified": {stdErrors.New("x"), 1},
		"validation":   {ValidationError("bad").Build(), 2},
		"config":       {ConfigError("bad").Build(), 7},
		"storage":      {StorageError("down").Build(), 8},
		"ingestion":    {IngestionError("missing source").Build(), 11},
		"internal":     {InternalError("bug").Build(), 10},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tc.err); got != tc.want {
				t.Fatalf("ExitCodeFor() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := WrapError(stdErrors.New("open psalm-07.html: no such file"), CategoryIngestion, "source document unreadable").Build()

	quiet := NewCLIErrorAdapter(false, slog.Default()).FormatError(err)
	if !strings.Contains(quiet, "source document unreadable") || strings.Contains(quiet, "psalm-07.html") {
		t.Fatalf("unexpected non-verbose output %q", quiet)
	}

	verbose := NewCLIErrorAdapter(true, slog.Default()).FormatError(err)
	if !strings.Contains(verbose, "psalm-07.html") {
		t.Fatalf("expected verbose output to include cause, got %q", verbose)
	}
}

func TestCLIErrorAdapter_LogsFatalAndRetryable(t *testing.T) {
	var logs bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))

	adapter.logError(IngestionError("psalm page missing").Build())
	if !strings.Contains(logs.String(), "fatal=true") {
		t.Fatalf("expected fatal attribute, got %q", logs.String())
	}

	logs.Reset()
	adapter.logError(StorageError("database unavailable").Build())
	out := logs.String()
	if strings.Contains(out, "fatal=true") || !strings.Contains(out, "retryable=true") {
		t.Fatalf("expected retryable non-fatal storage log, got %q", out)
	}
}
