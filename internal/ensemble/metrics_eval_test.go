package ensemble

import (
	"math"
	"testing"
)

func TestAUCKnownValue(t *testing.T) {
	labels := []float64{0, 0, 1, 1}
	scores := []float64{0.1, 0.4, 0.35, 0.8}

	if got := AUC(labels, scores); math.Abs(got-0.75) > 1e-12 {
		t.Fatalf("AUC = %v, want 0.75", got)
	}
}

func TestAUCPerfectRanking(t *testing.T) {
	labels := []float64{0, 0, 1, 1}
	scores := []float64{0.1, 0.2, 0.8, 0.9}

	if got := AUC(labels, scores); got != 1 {
		t.Fatalf("AUC = %v, want 1", got)
	}
}

func TestAUCTiedScores(t *testing.T) {
	labels := []float64{0, 1, 0, 1}
	scores := []float64{0.5, 0.5, 0.5, 0.5}

	if got := AUC(labels, scores); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("AUC with all ties = %v, want 0.5", got)
	}
}

func TestAUCTerminatesOnNaNScores(t *testing.T) {
	labels := []float64{0, 1, 0, 1}
	scores := []float64{math.NaN(), 0.6, math.NaN(), 0.8}

	got := AUC(labels, scores)
	if got < 0 || got > 1 || math.IsNaN(got) {
		t.Fatalf("AUC = %v, want a value in [0,1]", got)
	}
}

func TestAUCSingleClass(t *testing.T) {
	if got := AUC([]float64{1, 1, 1}, []float64{0.2, 0.5, 0.9}); got != 0 {
		t.Fatalf("single-class AUC = %v, want 0", got)
	}
}

func TestLogLossConfidentCorrect(t *testing.T) {
	labels := []float64{0, 1}
	probs := []float64{0.01, 0.99}

	got := LogLoss(labels, probs)
	want := -math.Log(0.99)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("LogLoss = %v, want %v", got, want)
	}
}

func TestLogLossUninformative(t *testing.T) {
	labels := []float64{0, 1, 0, 1}
	probs := []float64{0.5, 0.5, 0.5, 0.5}

	got := LogLoss(labels, probs)
	if math.Abs(got-math.Ln2) > 1e-12 {
		t.Fatalf("LogLoss = %v, want ln 2", got)
	}
}

func TestLogLossClipsExtremes(t *testing.T) {
	got := LogLoss([]float64{1}, []float64{0})
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("LogLoss = %v, want finite", got)
	}
}
