// Package logger provides pipeline-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for prediction pipeline stages.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger tagged with the run ID.
func NewPipelineLogger(baseLogger *logrus.Logger, runID string) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component": "pipeline",
			"run_id":    runID,
		}),
	}
}

// LogTableLoaded logs a normalized input table.
func (pl *PipelineLogger) LogTableLoaded(name, source string, rows, cols int) {
	pl.WithFields(logrus.Fields{
		"table":   name,
		"source":  source,
		"rows":    rows,
		"columns": cols,
	}).Info("Table loaded and normalized")
}

// LogFeatureReconciliation logs the shared feature set after pruning.
func (pl *PipelineLogger) LogFeatureReconciliation(initial, retained, dropped int, threshold float64) {
	pl.WithFields(logrus.Fields{
		"initial_features":      initial,
		"retained_features":     retained,
		"dropped_features":      dropped,
		"correlation_threshold": threshold,
	}).Info("Feature set reconciled")
}

// LogModelFit logs one classifier variant's fit outcome.
func (pl *PipelineLogger) LogModelFit(variant string, ok bool, durationMs float64) {
	entry := pl.WithFields(logrus.Fields{
		"variant":     variant,
		"duration_ms": durationMs,
	})
	if ok {
		entry.Info("Classifier fitted")
		return
	}
	entry.Warn("Classifier failed to fit")
}

// LogValidation logs ensemble quality on the holdout split.
func (pl *PipelineLogger) LogValidation(members int, auc, logLoss float64) {
	pl.WithFields(logrus.Fields{
		"ensemble_members": members,
		"auc":              auc,
		"log_loss":         logLoss,
	}).Info("Validation metrics computed")
}

// LogCalibration logs the fitted calibration curve.
func (pl *PipelineLogger) LogCalibration(knots, samples int) {
	pl.WithFields(logrus.Fields{
		"knots":   knots,
		"samples": samples,
	}).Info("Isotonic calibration fitted")
}

// LogLeaderboard logs the final board summary.
func (pl *PipelineLogger) LogLeaderboard(scored, topN int, gap float64, hasGap bool) {
	fields := logrus.Fields{
		"players_scored": scored,
		"top_n":          topN,
	}
	if hasGap {
		fields["confidence_gap"] = gap
	}
	pl.WithFields(fields).Info("Leaderboard built")
}

// LogPlayerTrace logs a debug trace for one tracked player at a named stage.
func (pl *PipelineLogger) LogPlayerTrace(player, stage string, fields logrus.Fields) {
	pl.WithField("player", player).WithField("stage", stage).WithFields(fields).Debug("Player trace")
}
