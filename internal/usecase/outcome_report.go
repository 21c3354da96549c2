package usecase

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	xutil "ZoneWatch/pkg/util"
)

var outcomeHeader = []string{"symbol", "interval", "candles", "zones", "fresh", "broken", "target_met", "error"}

// WriteOutcomeCSV writes one row per universe result. Failed symbols keep their
// row with zero counts and the error text.
func WriteOutcomeCSV(w io.Writer, results []SymbolResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(outcomeHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{r.Symbol, "", "0", "0", "0", "0", "0", ""}
		if r.Err != nil {
			row[7] = r.Err.Error()
		} else {
			s := r.Report.Summary
			row[1] = r.Report.Interval
			row[2] = strconv.Itoa(r.Report.Candles)
			row[3] = strconv.Itoa(s.Total)
			row[4] = strconv.Itoa(s.Fresh)
			row[5] = strconv.Itoa(s.Broken)
			row[6] = strconv.Itoa(s.TargetMet)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSymbolsCSV returns the normalized, de-duplicated values of column (case-insensitive)
// in input order.
func ReadSymbolsCSV(r io.Reader, column string) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("symbols csv: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("symbols csv header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("symbols csv: column %q not found", column)
	}

	seen := map[string]bool{}
	var out []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("symbols csv: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		sym := xutil.NormalizeSymbol(rec[col])
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out, nil
}
