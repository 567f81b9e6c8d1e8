package errs

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	err := New(KindValidation, "period must be a multiple of 60")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestWrapPreservesCause(t *testing.T) {
	err := Wrap(KindFetch, io.ErrUnexpectedEOF, "region %s", "us-east-1")

	assert.Equal(t, KindFetch, KindOf(err))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Contains(t, err.Error(), "us-east-1")
}

func TestKindSurvivesFurtherWrapping(t *testing.T) {
	inner := New(KindNotFound, "account abc")
	outer := fmt.Errorf("refresh failed: %w", inner)

	assert.Equal(t, KindNotFound, KindOf(outer))
	assert.True(t, IsKind(outer, KindNotFound))
	assert.False(t, IsKind(outer, KindFetch))
}
