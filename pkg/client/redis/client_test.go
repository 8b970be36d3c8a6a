package redis

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func TestDoWithTries_StopsOnSuccess(t *testing.T) {
	calls := 0
	err := doWithTries(func() error {
		calls++
		if calls < 2 {
			return errors.New("connection refused")
		}
		return nil
	}, 5, time.Millisecond)

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoWithTries_ReturnsLastError(t *testing.T) {
	calls := 0
	err := doWithTries(func() error {
		calls++
		return errors.New("connection refused")
	}, 3, time.Millisecond)

	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, 3, calls)
}
