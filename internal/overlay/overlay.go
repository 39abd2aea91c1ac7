// Package overlay adjusts model probabilities for game-day context: wind,
// temperature, humidity and park home-run factor. The adjustment is a
// deterministic multiplier applied after calibration.
package overlay

import (
	"math"
	"strings"

	"github.com/yourusername/longball/internal/tabular"
)

// Column names consulted when deriving conditions from a table row.
const (
	ColWindMPH   = "wind_mph"
	ColWindDir   = "wind_dir_string"
	ColTemp      = "temp"
	ColHumidity  = "humidity"
	ColParkRate  = "park_hr_rate"
	baselineTemp = 70.0
)

// Config holds the overlay thresholds and factors. Zero values are not
// meaningful; construct with DefaultConfig and override from configuration.
type Config struct {
	WindThresholdMPH float64
	WindOutFactor    float64
	WindInFactor     float64
	TempFactorPer10F float64
	HumidityHighCut  float64
	HumidityHighFac  float64
	HumidityLowCut   float64
	HumidityLowFac   float64
	ParkFactorMin    float64
	ParkFactorMax    float64
}

// DefaultConfig returns the standard overlay parameters.
func DefaultConfig() Config {
	return Config{
		WindThresholdMPH: 10,
		WindOutFactor:    1.08,
		WindInFactor:     0.93,
		TempFactorPer10F: 1.03,
		HumidityHighCut:  60,
		HumidityHighFac:  1.02,
		HumidityLowCut:   40,
		HumidityLowFac:   0.98,
		ParkFactorMin:    0.85,
		ParkFactorMax:    1.20,
	}
}

// Conditions captures the per-row context feeding the overlay. Nil fields
// mean the value was absent or unparsable and contribute no adjustment.
type Conditions struct {
	WindMPH       *float64
	WindDirection string
	Temperature   *float64
	Humidity      *float64
	ParkHRRate    *float64
}

// FromRow extracts conditions from one row of a normalized table. Missing
// columns and null cells leave the corresponding field nil.
func FromRow(t *tabular.Table, row int) Conditions {
	var c Conditions
	c.WindMPH = numericCell(t, ColWindMPH, row)
	c.Temperature = numericCell(t, ColTemp, row)
	c.Humidity = numericCell(t, ColHumidity, row)
	c.ParkHRRate = numericCell(t, ColParkRate, row)
	if col, ok := t.Col(ColWindDir); ok {
		c.WindDirection = col.StringAt(row)
	}
	return c
}

func numericCell(t *tabular.Table, name string, row int) *float64 {
	col, ok := t.Col(name)
	if !ok {
		return nil
	}
	v, present := col.FloatAt(row)
	if !present || math.IsNaN(v) {
		return nil
	}
	return &v
}

// Multiplier computes the combined overlay factor for the conditions. Each
// component multiplies independently; absent inputs contribute 1.0.
func (cfg Config) Multiplier(c Conditions) float64 {
	mult := 1.0

	if c.WindMPH != nil && *c.WindMPH >= cfg.WindThresholdMPH {
		dir := strings.ToLower(c.WindDirection)
		switch {
		case strings.Contains(dir, "out"):
			mult *= cfg.WindOutFactor
		case strings.Contains(dir, "in"):
			mult *= cfg.WindInFactor
		}
	}

	if c.Temperature != nil {
		mult *= math.Pow(cfg.TempFactorPer10F, (*c.Temperature-baselineTemp)/10)
	}

	if c.Humidity != nil {
		switch {
		case *c.Humidity > cfg.HumidityHighCut:
			mult *= cfg.HumidityHighFac
		case *c.Humidity < cfg.HumidityLowCut:
			mult *= cfg.HumidityLowFac
		}
	}

	if c.ParkHRRate != nil {
		park := *c.ParkHRRate
		if park < cfg.ParkFactorMin {
			park = cfg.ParkFactorMin
		}
		if park > cfg.ParkFactorMax {
			park = cfg.ParkFactorMax
		}
		mult *= park
	}

	return mult
}

// Apply returns the final probability: the calibrated probability times the
// overlay multiplier, clamped to [0,1].
func Apply(probability, multiplier float64) float64 {
	p := probability * multiplier
	return math.Max(0, math.Min(1, p))
}
