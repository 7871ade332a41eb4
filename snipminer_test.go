package snipminer_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/snipminer"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := snipminer.Errorf(snipminer.ENOTFOUND, "gist %q not found", "abc")

	assert.Equal(t, snipminer.ENOTFOUND, snipminer.ErrorCode(err))
	assert.Equal(t, "gist \"abc\" not found", snipminer.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("fetch gist: %w", snipminer.Errorf(snipminer.ENOTFOUND, "missing"))

	assert.Equal(t, snipminer.ENOTFOUND, snipminer.ErrorCode(err))
	assert.Equal(t, "missing", snipminer.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("boom")

	assert.Equal(t, snipminer.EINTERNAL, snipminer.ErrorCode(err))
	assert.Equal(t, "Internal error.", snipminer.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, snipminer.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, snipminer.ErrorMessage(nil))
}
