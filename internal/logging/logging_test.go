package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	log := New("logging-test")
	require.NotNil(t, log)

	require.NoError(t, SetLevel("logging-test", "debug"))
	require.NoError(t, SetLevel("logging-test", "error"))
	assert.Error(t, SetLevel("logging-test", "loud"))
	assert.Error(t, SetLevel("no-such-subsystem", "debug"))
}
