// Package leaderboard ranks scored players and renders the top-N board.
package leaderboard

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
)

// Entry is one scored player. Probability and Final carry four display
// decimals, Multiplier three; ordering always uses the unrounded final.
type Entry struct {
	Rank        int
	PlayerName  string
	Probability float64
	Multiplier  float64
	Final       float64

	rawFinal float64
}

// Build assembles entries from parallel slices and sorts them by descending
// final probability, breaking ties by player name for deterministic output.
func Build(names []string, calibrated, multipliers, finals []float64) []Entry {
	entries := make([]Entry, len(names))
	for i := range names {
		entries[i] = Entry{
			PlayerName:  names[i],
			Probability: roundTo(calibrated[i], 4),
			Multiplier:  roundTo(multipliers[i], 3),
			Final:       roundTo(finals[i], 4),
			rawFinal:    finals[i],
		}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].rawFinal != entries[b].rawFinal {
			return entries[a].rawFinal > entries[b].rawFinal
		}
		return entries[a].PlayerName < entries[b].PlayerName
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Top returns the first n entries, or all of them when fewer exist.
func Top(entries []Entry, n int) []Entry {
	if n > len(entries) {
		n = len(entries)
	}
	return entries[:n]
}

// ConfidenceGap returns the unrounded final-probability drop between the
// last player on the board and the first player off it. The second return
// is false when the pool is not strictly larger than the board.
func ConfidenceGap(entries []Entry, topN int) (float64, bool) {
	if topN <= 0 || len(entries) <= topN {
		return 0, false
	}
	return entries[topN-1].rawFinal - entries[topN].rawFinal, true
}

// WriteCSV renders entries as CSV with a header row.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "player_name", "hr_probability", "overlay_multiplier", "final_hr_probability"}); err != nil {
		return fmt.Errorf("write leaderboard header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			fmt.Sprintf("%d", e.Rank),
			e.PlayerName,
			formatTo(e.Probability, 4),
			formatTo(e.Multiplier, 3),
			formatTo(e.Final, 4),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write leaderboard row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func roundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func formatTo(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).String()
}
