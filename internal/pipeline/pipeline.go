// Package pipeline orchestrates the end-to-end prediction run: table
// ingestion, feature reconciliation, ensemble training, calibration, the
// weather/park overlay and the final leaderboard.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/longball/internal/calibration"
	"github.com/yourusername/longball/internal/config"
	"github.com/yourusername/longball/internal/ensemble"
	"github.com/yourusername/longball/internal/features"
	"github.com/yourusername/longball/internal/leaderboard"
	"github.com/yourusername/longball/internal/logger"
	"github.com/yourusername/longball/internal/metrics"
	"github.com/yourusername/longball/internal/overlay"
	"github.com/yourusername/longball/internal/tabular"
)

// PlayerNameColumn is the display-name column consulted for the leaderboard
// and debug traces.
const PlayerNameColumn = "player_name"

// TableLoader abstracts table retrieval so runs can use the plain or cached
// loader interchangeably.
type TableLoader interface {
	Load(ctx context.Context, src string) (*tabular.Table, error)
}

// Pipeline wires the stages of one prediction run.
type Pipeline struct {
	cfg    *config.Config
	loader TableLoader
	log    *logrus.Logger
	models func(seed int64) []ensemble.Model
}

// New creates a pipeline from configuration. Table loads go through an
// in-memory cache when the configured TTL is positive.
func New(cfg *config.Config, log *logrus.Logger) *Pipeline {
	fetchCfg := tabular.DefaultFetcherConfig()
	fetchCfg.Timeout = time.Duration(cfg.Data.FetchTimeout) * time.Second
	fetchCfg.MaxRetries = cfg.Data.FetchRetries
	fetchCfg.MaxBodyBytes = cfg.Data.MaxBodyBytes
	fetchCfg.RateLimit = cfg.Data.RatePerSecond

	var loader TableLoader = tabular.NewLoaderWithConfig(fetchCfg, log)
	if cfg.Data.CacheTTL > 0 {
		loader = tabular.NewCachedLoader(
			tabular.NewLoaderWithConfig(fetchCfg, log),
			time.Duration(cfg.Data.CacheTTL)*time.Second,
			log,
		)
	}
	return &Pipeline{
		cfg:    cfg,
		loader: loader,
		log:    log,
		models: ensemble.DefaultModels,
	}
}

// Result summarizes one completed run.
type Result struct {
	RunID          string
	Reconciliation features.Reconciliation
	LabelCounts    []tabular.ValueCount
	FitResults     []ensemble.FitResult
	ValidationAUC  float64
	ValidationLoss float64
	Importances    map[string]float64
	Coefficients   map[string]float64
	Predictions    *tabular.Table
	Leaderboard    []leaderboard.Entry
	TopN           []leaderboard.Entry
	ConfidenceGap  float64
	HasGap         bool
}

// Run executes the full pipeline against the configured event and today
// sources.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	pl := logger.NewPipelineLogger(p.log, runID)
	result := &Result{RunID: runID}
	runStart := time.Now()

	event, err := p.loadTable(ctx, pl, "event", p.cfg.Data.EventPath)
	if err != nil {
		metrics.RecordRun(true)
		return nil, err
	}
	today, err := p.loadTable(ctx, pl, "today", p.cfg.Data.TodayPath)
	if err != nil {
		metrics.RecordRun(true)
		return nil, err
	}

	labels, labeledRows, labelCounts, err := p.extractLabels(event, pl)
	if err != nil {
		metrics.RecordRun(true)
		return nil, err
	}
	result.LabelCounts = labelCounts

	stageStart := time.Now()
	rec := features.Reconcile(event, today, p.cfg.Pipeline.ExcludeColumns, p.cfg.Pipeline.CorrelationThreshold)
	if len(rec.Retained) == 0 {
		metrics.RecordRun(true)
		return nil, ErrNoFeatures
	}
	result.Reconciliation = rec
	pl.LogFeatureReconciliation(len(rec.Initial), len(rec.Retained), len(rec.Dropped), p.cfg.Pipeline.CorrelationThreshold)
	metrics.UpdateFeatureCounts(len(rec.Retained), len(rec.Dropped))
	metrics.RecordStageDuration("reconcile", time.Since(stageStart).Seconds())

	stageStart = time.Now()
	eventMatrix, err := features.Build(event, rec.Retained, nil)
	if err != nil {
		metrics.RecordRun(true)
		return nil, fmt.Errorf("building event matrix: %w", err)
	}
	todayMatrix, err := features.Build(today, nil, eventMatrix.Cols)
	if err != nil {
		metrics.RecordRun(true)
		return nil, fmt.Errorf("building today matrix: %w", err)
	}
	trainMatrix := eventMatrix.SubsetRows(labeledRows)
	metrics.RecordStageDuration("matrix", time.Since(stageStart).Seconds())

	p.tracePlayers(pl, today, todayMatrix, nil, nil, nil, "matrix")

	stageStart = time.Now()
	trainOut, err := ensemble.Train(ensemble.TrainConfig{
		ValidationFraction: p.cfg.Pipeline.ValidationFraction,
		Seed:               p.cfg.Pipeline.Seed,
	}, trainMatrix, labels, p.models(p.cfg.Pipeline.Seed), p.log)
	if err != nil {
		metrics.RecordRun(true)
		return nil, fmt.Errorf("training ensemble: %w", err)
	}
	for _, fr := range trainOut.Results {
		metrics.RecordModelFit(fr.OK())
		pl.LogModelFit(fr.Variant, fr.OK(), 0)
	}
	result.FitResults = trainOut.Results
	result.ValidationAUC = trainOut.ValidationAUC
	result.ValidationLoss = trainOut.ValidationLogLoss
	result.Importances = namedWeights(trainMatrix.Cols, trainOut.Importances)
	result.Coefficients = namedWeights(trainMatrix.Cols, trainOut.Coefficients)
	pl.LogValidation(trainOut.Ensemble.Size(), trainOut.ValidationAUC, trainOut.ValidationLogLoss)
	metrics.UpdateValidation(trainOut.Ensemble.Size(), trainOut.ValidationAUC, trainOut.ValidationLogLoss)
	metrics.RecordStageDuration("train", time.Since(stageStart).Seconds())

	stageStart = time.Now()
	iso, err := calibration.Fit(trainOut.ValidationProbs, trainOut.ValidationLabels)
	if err != nil {
		pl.WithError(err).Warn("Calibration unavailable, using raw ensemble probabilities")
		iso = nil
	} else {
		pl.LogCalibration(iso.Knots(), len(trainOut.ValidationProbs))
	}
	metrics.RecordStageDuration("calibrate", time.Since(stageStart).Seconds())

	stageStart = time.Now()
	todayScaled := trainOut.Scaler.Transform(todayMatrix)
	raw := trainOut.Ensemble.PredictProbability(todayScaled.Data)
	calibrated := raw
	if iso != nil {
		calibrated = iso.PredictAll(raw)
	}

	multipliers := make([]float64, len(calibrated))
	finals := make([]float64, len(calibrated))
	overlayCfg := p.overlayConfig()
	for i := range calibrated {
		multipliers[i] = overlayCfg.Multiplier(overlay.FromRow(today, i))
		finals[i] = overlay.Apply(calibrated[i], multipliers[i])
	}
	metrics.RecordRowsScored(len(finals))
	metrics.RecordStageDuration("score", time.Since(stageStart).Seconds())

	p.tracePlayers(pl, today, todayMatrix, raw, calibrated, finals, "scored")

	names := playerNames(today)
	result.Predictions = withPredictionColumns(today, calibrated, multipliers, finals)
	result.Leaderboard = leaderboard.Build(names, calibrated, multipliers, finals)
	result.TopN = leaderboard.Top(result.Leaderboard, p.cfg.Output.TopN)
	result.ConfidenceGap, result.HasGap = leaderboard.ConfidenceGap(result.Leaderboard, p.cfg.Output.TopN)
	pl.LogLeaderboard(len(result.Leaderboard), p.cfg.Output.TopN, result.ConfidenceGap, result.HasGap)

	metrics.RecordRun(false)
	metrics.RecordStageDuration("run", time.Since(runStart).Seconds())
	return result, nil
}

func (p *Pipeline) loadTable(ctx context.Context, pl *logger.PipelineLogger, name, src string) (*tabular.Table, error) {
	start := time.Now()
	raw, err := p.loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("loading %s table: %w", name, err)
	}
	t, err := tabular.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing %s table: %w", name, err)
	}
	pl.LogTableLoaded(name, src, t.NumRows(), t.NumCols())
	metrics.RecordTableLoaded(name, sourceFormat(src), time.Since(start).Seconds())

	p.tracePlayers(pl, t, nil, nil, nil, nil, "raw")
	return t, nil
}

func sourceFormat(src string) string {
	if len(src) > 8 && src[len(src)-8:] == ".parquet" {
		return "parquet"
	}
	return "csv"
}

// extractLabels returns the outcome vector, the indices of rows carrying a
// label, and the label value-counts summary. A missing, non-numeric or
// non-binary label column aborts the run; rows with a null label are excluded
// from training with a warning.
func (p *Pipeline) extractLabels(event *tabular.Table, pl *logger.PipelineLogger) ([]float64, []int, []tabular.ValueCount, error) {
	name := p.cfg.Pipeline.LabelColumn
	col, ok := event.Col(name)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrLabelColumnMissing, name)
	}
	if !col.IsNumeric() {
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrLabelColumnNotNumeric, name)
	}

	counts, err := event.ValueCounts(name)
	if err == nil {
		fields := logrus.Fields{}
		for _, vc := range counts {
			fields[vc.Value] = vc.Count
		}
		pl.WithField("column", name).WithFields(fields).Info("Outcome distribution")
	}

	var labels []float64
	var rows []int
	for i := 0; i < col.Len(); i++ {
		v, present := col.FloatAt(i)
		if !present {
			continue
		}
		if v != 0 && v != 1 {
			return nil, nil, nil, fmt.Errorf("%w: %s row %d holds %v", ErrLabelNotBinary, name, i, v)
		}
		labels = append(labels, v)
		rows = append(rows, i)
	}
	if len(rows) == 0 {
		return nil, nil, nil, ErrNoLabeledRows
	}
	if dropped := col.Len() - len(rows); dropped > 0 {
		pl.WithFields(logrus.Fields{
			"column":  name,
			"dropped": dropped,
		}).Warn("Excluding rows with missing outcome label")
	}
	return labels, rows, counts, nil
}

func (p *Pipeline) overlayConfig() overlay.Config {
	o := p.cfg.Overlay
	return overlay.Config{
		WindThresholdMPH: o.WindThresholdMPH,
		WindOutFactor:    o.WindOutFactor,
		WindInFactor:     o.WindInFactor,
		TempFactorPer10F: o.TempFactorPer10F,
		HumidityHighCut:  o.HumidityHighCut,
		HumidityHighFac:  o.HumidityHighFac,
		HumidityLowCut:   o.HumidityLowCut,
		HumidityLowFac:   o.HumidityLowFac,
		ParkFactorMin:    o.ParkFactorMin,
		ParkFactorMax:    o.ParkFactorMax,
	}
}

// tracePlayers emits debug traces for the configured players at one stage.
// Slices may be nil when the stage has not produced them yet.
func (p *Pipeline) tracePlayers(pl *logger.PipelineLogger, t *tabular.Table, m *features.Matrix, raw, calibrated, finals []float64, stage string) {
	if len(p.cfg.Pipeline.DebugPlayers) == 0 || !t.HasColumn(PlayerNameColumn) {
		return
	}
	for _, player := range p.cfg.Pipeline.DebugPlayers {
		for _, i := range t.FindRows(PlayerNameColumn, player) {
			fields := logrus.Fields{"row": i}
			switch {
			case m != nil && raw == nil:
				fields["features"] = m.Row(i)
			case raw != nil:
				fields["raw_probability"] = raw[i]
				fields["calibrated_probability"] = calibrated[i]
				fields["final_probability"] = finals[i]
			default:
				fields["cells"] = t.RowMap(i)
			}
			pl.LogPlayerTrace(player, stage, fields)
		}
	}
}

// namedWeights zips feature names with a weight vector; nil weights (no
// tree members, or logistic regression excluded) yield a nil map.
func namedWeights(cols []string, weights []float64) map[string]float64 {
	if weights == nil || len(weights) != len(cols) {
		return nil
	}
	out := make(map[string]float64, len(cols))
	for i, name := range cols {
		out[name] = weights[i]
	}
	return out
}

func playerNames(t *tabular.Table) []string {
	names := make([]string, t.NumRows())
	col, ok := t.Col(PlayerNameColumn)
	for i := range names {
		if ok {
			if name := col.StringAt(i); name != "" {
				names[i] = name
				continue
			}
		}
		names[i] = fmt.Sprintf("row_%d", i)
	}
	return names
}

// withPredictionColumns returns a copy of the today table extended with the
// probability, multiplier and final probability columns.
func withPredictionColumns(t *tabular.Table, calibrated, multipliers, finals []float64) *tabular.Table {
	out := t.Clone()
	out.AddColumn(numericColumn("hr_probability", calibrated))
	out.AddColumn(numericColumn("overlay_multiplier", multipliers))
	out.AddColumn(numericColumn("final_hr_probability", finals))
	return out
}

func numericColumn(name string, values []float64) tabular.Column {
	return tabular.Column{
		Name:   name,
		Kind:   tabular.KindNumeric,
		Floats: append([]float64(nil), values...),
		Nulls:  make([]bool, len(values)),
	}
}
