package result

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestOk(t *testing.T) {
	r := Ok[[]string, string]([]string{"Apples"})

	require.True(t, r.IsOk())
	assert.Equal(t, []string{"Apples"}, r.Data())
	assert.Empty(t, r.Err())
}

func TestErr(t *testing.T) {
	r := Err[int, string]("email already in use")

	require.False(t, r.IsOk())
	assert.Equal(t, "email already in use", r.Err())
	assert.Zero(t, r.Data())
}

func TestZeroValueIsFailure(t *testing.T) {
	var r Result[string, string]

	assert.False(t, r.IsOk())
	assert.Empty(t, r.Data())
}
