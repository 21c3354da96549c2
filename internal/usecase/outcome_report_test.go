package usecase

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"ZoneWatch/internal/domain/models"
)

func TestWriteOutcomeCSV(t *testing.T) {
	zs := []models.Zone{
		{Outcome: models.OutcomeFresh},
		{Outcome: models.OutcomeBroken},
		{Outcome: models.OutcomeTargetMet},
		{Outcome: models.OutcomeTargetMet},
	}
	results := []SymbolResult{
		{Symbol: "AAPL", Report: &models.ZoneReport{Symbol: "AAPL", Interval: "1wk", Candles: 260, Zones: zs, Summary: models.Summarize(zs)}},
		{Symbol: "FAIL", Err: errors.New("no market data")},
	}
	var buf bytes.Buffer
	if err := WriteOutcomeCSV(&buf, results); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "symbol,interval,candles,zones,fresh,broken,target_met,error\n" +
		"AAPL,1wk,260,4,1,1,2,\n" +
		"FAIL,,0,0,0,0,0,no market data\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}

func TestReadSymbolsCSV(t *testing.T) {
	in := "\ufeffName,Symbol\nApple, aapl\nMicrosoft,MSFT\nDup,AAPL\nShort\nBlank,\n"
	got, err := ReadSymbolsCSV(strings.NewReader(in), "symbol")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Join(got, ",") != "AAPL,MSFT" {
		t.Fatalf("unexpected symbols %v", got)
	}

	if _, err := ReadSymbolsCSV(strings.NewReader("Ticker\nAAPL\n"), "Symbol"); err == nil {
		t.Fatalf("expected missing column error")
	}
	if _, err := ReadSymbolsCSV(strings.NewReader(""), "Symbol"); err == nil {
		t.Fatalf("expected empty file error")
	}
}
