package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := NewLogger("not-a-level", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLoggerParsesLevel(t *testing.T) {
	log := NewLogger("debug", "development")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewLoggerFormatterFollowsEnvironment(t *testing.T) {
	prod := NewLogger("info", "production")
	_, isJSON := prod.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON, "production logger should use the JSON formatter")

	dev := NewLogger("info", "development")
	_, isText := dev.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText, "development logger should use the text formatter")
}

func TestPipelineLoggerTableLoaded(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPipelineLogger(log, "run_001")

	pl.LogTableLoaded("event", "data/event.csv", 1200, 85)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "event", logEntry["table"])
	assert.Equal(t, "pipeline", logEntry["component"])
	assert.Equal(t, "run_001", logEntry["run_id"])
	assert.Equal(t, float64(1200), logEntry["rows"])
}

func TestPipelineLoggerFeatureReconciliation(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPipelineLogger(log, "run_001")

	pl.LogFeatureReconciliation(80, 72, 8, 0.97)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(72), logEntry["retained_features"])
	assert.Equal(t, 0.97, logEntry["correlation_threshold"])
}

func TestPipelineLoggerModelFitFailure(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPipelineLogger(log, "run_001")

	pl.LogModelFit("random-forest", false, 812.4)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "random-forest", logEntry["variant"])
	assert.Equal(t, "warning", logEntry["level"])
}

func TestPipelineLoggerLeaderboardGap(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPipelineLogger(log, "run_001")

	pl.LogLeaderboard(150, 30, 0.0123, true)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(30), logEntry["top_n"])
	assert.Equal(t, 0.0123, logEntry["confidence_gap"])
}

func TestPipelineLoggerLeaderboardNoGap(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPipelineLogger(log, "run_001")

	pl.LogLeaderboard(20, 30, 0, false)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	_, present := logEntry["confidence_gap"]
	assert.False(t, present)
}

func TestLoggerJSONFormat(t *testing.T) {
	log, buf := setupTestLogger()
	pl := NewPipelineLogger(log, "run_001")

	pl.LogValidation(6, 0.83, 0.41)

	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	assert.NoError(t, err)
	assert.NotEmpty(t, logEntry)
}

func BenchmarkPipelineLoggerModelFit(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	pl := NewPipelineLogger(log, "run_001")

	for i := 0; i < b.N; i++ {
		pl.LogModelFit("gbdt-hist", true, 120.5)
	}
}
