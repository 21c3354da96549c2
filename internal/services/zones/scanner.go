package zones

import "ZoneWatch/internal/domain/models"

// Candidate is a leg-in / base / leg-out triple found by the scanner, not yet confirmed.
type Candidate struct {
	LegIn  int
	Base   []int
	LegOut int
}

// Scanner groups candles into candidates in a single forward pass.
type Scanner struct {
	cls        *Classifier
	minBase    int
	maxBase    int
	minPattern int
}

func NewScanner(cls *Classifier, t Thresholds) *Scanner {
	return &Scanner{cls: cls, minBase: t.MinBaseCount, maxBase: t.MaxBaseCount, minPattern: t.MinPatternLength}
}

// Scan walks the series once: seek leg-in, collect base, test leg-out.
// After a candidate is emitted or discarded the cursor resumes at the
// leg-out index (or the end of the base run), so candidates never overlap.
func (s *Scanner) Scan(candles []models.Candle) []Candidate {
	n := len(candles)
	var out []Candidate
	i := 0
	for i+s.minPattern <= n {
		if !s.cls.IsLegIn(candles[i]) {
			i++
			continue
		}

		j := i + 1
		var base []int
		for j < n && len(base) < s.maxBase && s.cls.IsBase(candles[j]) {
			base = append(base, j)
			j++
		}

		if len(base) >= s.minBase && j < n && s.cls.IsLegOut(candles[j]) {
			out = append(out, Candidate{LegIn: i, Base: base, LegOut: j})
		}
		i = j
	}
	return out
}
