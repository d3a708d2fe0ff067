package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dockrmsd/internal/testutil"
)

func TestMockLogger(t *testing.T) {
	logger := testutil.NewMockLogger()

	logger.Info("test info", logging.String("key", "value"))

	messages := logger.GetMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	assert.Equal(t, "test info", messages[0].Message)

	logger.Clear()
	assert.Len(t, logger.GetMessages(), 0)

	logger.Error("test error")
	assert.True(t, logger.HasMessage("error", "test error"))
	assert.False(t, logger.HasMessage("info", "test info"))
}

func TestMockLogger_ChildrenShareLog(t *testing.T) {
	logger := testutil.NewMockLogger()
	child := logger.Named("scoring").Named("pipeline").With(logging.String("stage", "solve"))

	child.Debug("stage done", logging.Int("atoms", 3))

	messages := logger.GetMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "scoring.pipeline", messages[0].Logger)
	v, ok := messages[0].FieldValue("stage")
	assert.True(t, ok)
	assert.Equal(t, "solve", v)
	v, ok = messages[0].FieldValue("atoms")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}
