package command

import (
	"bytes"
	"runtime"
	"testing"
)

func TestRunEcho(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell assumed")
	}

	r := NewRunner()
	out, err := r.Run(`echo -n "test"`)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !bytes.Equal(out, []byte("test")) {
		t.Fatalf("Run() = %q, want %q", out, "test")
	}
}

func TestRunBashBinaryOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell assumed")
	}

	r := NewRunner()
	out, err := r.Run(`bash -c 'printf "\x00\xaa\x0a"'`)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	want := []byte{0x00, 0xaa, 0x0a}
	if !bytes.Equal(out, want) {
		t.Fatalf("Run() = %v, want %v", out, want)
	}
}

func TestRunQuotedArguments(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell assumed")
	}

	r := NewRunner()
	out, err := r.Run(`bash -c 'VAR=test; echo -n $VAR'`)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !bytes.Equal(out, []byte("test")) {
		t.Fatalf("Run() = %q, want %q", out, "test")
	}
}

func TestRunNonexistentCommandIsExecError(t *testing.T) {
	r := NewRunner()
	if _, err := r.Run("xxxxyyyytttt-does-not-exist"); err == nil {
		t.Fatal("expected error for nonexistent command")
	}
}

func TestRunEmptyCommandIsExecError(t *testing.T) {
	r := NewRunner()
	if _, err := r.Run(""); err == nil {
		t.Fatal("expected error for empty command line")
	}
}

func TestRunUnterminatedQuoteIsSplitError(t *testing.T) {
	r := NewRunner()
	if _, err := r.Run(`echo "unterminated`); err == nil {
		t.Fatal("expected split error for unterminated quote")
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell assumed")
	}

	r := NewRunner()
	out, err := r.Run(`bash -c 'echo -n "still here"; exit 7'`)
	if err != nil {
		t.Fatalf("Run() should not surface a nonzero exit status as an error, got: %v", err)
	}
	if !bytes.Equal(out, []byte("still here")) {
		t.Fatalf("Run() = %q, want %q", out, "still here")
	}
}

func TestRunCapturesStderrAfterStdout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix shell assumed")
	}

	r := NewRunner()
	out, err := r.Run(`bash -c 'echo -n out; echo -n err 1>&2'`)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !bytes.Equal(out, []byte("outerr")) {
		t.Fatalf("Run() = %q, want %q", out, "outerr")
	}
}
