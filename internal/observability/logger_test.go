package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitializeWritesStructuredLogs(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(LoggerConfig{Level: "debug", Format: "json", ServiceName: "pedflow-test"},
		zapcore.AddSync(&buf))

	log := GetLogger()
	require.NotNil(t, log)
	log.Info("frame committed")
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.Contains(t, out, "frame committed")
	assert.Contains(t, out, "pedflow-test")
}

func TestInitializeRunsOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var first, second bytes.Buffer
	Initialize(LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&first))
	Initialize(LoggerConfig{Level: "info", Format: "json"}, zapcore.AddSync(&second))

	GetLogger().Info("only the first sink sees this")
	_ = GetLogger().Sync()

	assert.NotEmpty(t, first.String())
	assert.Empty(t, second.String())
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(LoggerConfig{Level: "shouting", Format: "json"}, zapcore.AddSync(&buf))

	GetLogger().Debug("suppressed")
	GetLogger().Info("visible")
	_ = GetLogger().Sync()

	out := buf.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "visible")
}
