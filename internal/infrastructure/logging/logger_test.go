package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	logger, err := New(Config{Level: "debug", Development: true})
	require.NoError(t, err)
	assert.NotNil(t, logger.Logger)

	_, err = New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNamedAndNop(t *testing.T) {
	logger := NewNop().Named("connector")
	require.NotNil(t, logger)
	logger.Info("discarded")
}
