package waitfor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func closed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestTrigger(t *testing.T) {
	a := New()
	first, second := make(chan struct{}), make(chan struct{})
	n1 := a.Add([]byte("CANDa"), first)
	n2 := a.Add([]byte("CANDb"), second)
	assert.Equal(t, 2, a.Len())

	a.Trigger([]byte("CANDa"))
	a.Trigger([]byte("CANDa")) // must not close twice
	assert.True(t, closed(first))
	assert.False(t, closed(second))

	a.Del(n1)
	a.Del(n2)
	assert.Zero(t, a.Len())

	a.Trigger([]byte("CANDb"))
	assert.False(t, closed(second))
}
