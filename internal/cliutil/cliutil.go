// Package cliutil provides the small pieces the cmd/ binaries share:
// a leveled logger wrapping the standard library's log package, and a
// mapping from this toolkit's sentinel errors to stable process exit
// codes so scripts driving these tools can branch on failure reason
// without parsing log text.
package cliutil

import (
	"errors"
	"io"
	"log"
	"os"

	"github.com/fed4fire/speaksfor/pkg/loader"
	"github.com/fed4fire/speaksfor/pkg/verifier"
)

// Verbosity controls how much a Logger emits.
type Verbosity int

const (
	// Quiet logs only fatal errors.
	Quiet Verbosity = iota
	// Verbose logs informational progress (-v).
	Verbose
	// VeryVerbose additionally logs per-stage detail (-vv).
	VeryVerbose
)

// Logger is a leveled wrapper around *log.Logger. All cmd/ binaries
// use this instead of calling the log package directly, so that -v/-vv
// behave identically across the toolkit's three entry points.
type Logger struct {
	level Verbosity
	l     *log.Logger
}

// New creates a Logger writing to w at the given verbosity.
func New(w io.Writer, level Verbosity) *Logger {
	return &Logger{level: level, l: log.New(w, "", log.LstdFlags)}
}

// NewStderr is the common case: a Logger writing to os.Stderr.
func NewStderr(level Verbosity) *Logger {
	return New(os.Stderr, level)
}

// Info logs at Verbose and above.
func (lg *Logger) Info(format string, args ...any) {
	if lg.level >= Verbose {
		lg.l.Printf(format, args...)
	}
}

// Debug logs at VeryVerbose only.
func (lg *Logger) Debug(format string, args ...any) {
	if lg.level >= VeryVerbose {
		lg.l.Printf(format, args...)
	}
}

// Fatalf logs unconditionally and exits the process with status 1.
func (lg *Logger) Fatalf(format string, args ...any) {
	lg.l.Printf(format, args...)
	os.Exit(1)
}

// Exit codes. 0 is success; 2 is reserved for usage errors (mirroring
// the convention Go's own flag package uses); every verification or
// loading failure mode gets its own code in the 10s/20s/30s ranges so
// a caller can distinguish "credential expired" from "wrong password"
// from "untrusted CA" without scraping stderr.
const (
	ExitOK             = 0
	ExitUsage          = 2
	ExitInputParse     = 10
	ExitSchemaInvalid  = 11
	ExitSignatureBad   = 12
	ExitTrustNotTrust  = 13
	ExitTrustExpired   = 14
	ExitTrustMalformed = 15
	ExitExpired        = 16
	ExitKeyBinding     = 17
	ExitKeyDecryption  = 20
	ExitKeyAmbiguous   = 21
	ExitUnknown        = 1
)

// ExitCodeFor maps a verification or loading error to the process exit
// code cmd/validate-speaks-for and cmd/speaks-for should return.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	switch {
	case errors.Is(err, verifier.ErrUsageConflict):
		return ExitUsage
	case errors.Is(err, verifier.ErrInputParse):
		return ExitInputParse
	case errors.Is(err, verifier.ErrSchemaInvalid):
		return ExitSchemaInvalid
	case errors.Is(err, verifier.ErrSignatureInvalid):
		return ExitSignatureBad
	case errors.Is(err, verifier.ErrTrustChainNotTrusted):
		return ExitTrustNotTrust
	case errors.Is(err, verifier.ErrTrustChainExpired):
		return ExitTrustExpired
	case errors.Is(err, verifier.ErrTrustChainMalformed):
		return ExitTrustMalformed
	case errors.Is(err, verifier.ErrExpired):
		return ExitExpired
	case errors.Is(err, verifier.ErrKeyBindingMismatch):
		return ExitKeyBinding
	case errors.Is(err, loader.ErrKeyDecryption):
		return ExitKeyDecryption
	case errors.Is(err, loader.ErrKeyAmbiguous):
		return ExitKeyAmbiguous
	default:
		return ExitUnknown
	}
}
