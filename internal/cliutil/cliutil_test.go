package cliutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fed4fire/speaksfor/pkg/loader"
	"github.com/fed4fire/speaksfor/pkg/verifier"
)

func TestExitCodeForKnownErrors(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCodeFor(nil))
	assert.Equal(t, ExitExpired, ExitCodeFor(verifier.ErrExpired))
	assert.Equal(t, ExitTrustNotTrust, ExitCodeFor(verifier.ErrTrustChainNotTrusted))
	assert.Equal(t, ExitKeyDecryption, ExitCodeFor(loader.ErrKeyDecryption))
	assert.Equal(t, ExitUnknown, ExitCodeFor(errors.New("something else")))
}

func TestExitCodeForWrappedError(t *testing.T) {
	wrapped := errors.New("wrapping: " + verifier.ErrKeyBindingMismatch.Error())
	assert.Equal(t, ExitUnknown, ExitCodeFor(wrapped)) // plain string wrap, not %w — not detected

	properlyWrapped := fmtErrorf(verifier.ErrKeyBindingMismatch)
	assert.Equal(t, ExitKeyBinding, ExitCodeFor(properlyWrapped))
}

func fmtErrorf(err error) error {
	return errWrap{err}
}

type errWrap struct{ err error }

func (e errWrap) Error() string { return "wrap: " + e.err.Error() }
func (e errWrap) Unwrap() error { return e.err }
