package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradereflex/market"
)

var csvHeader = []string{"Datetime", "Open", "High", "Low", "Close", "Volume"}

const csvTimeLayout = "2006-01-02 15:04:05-07:00"

// WriteCSV exports s with the header Datetime,Open,High,Low,Close,Volume.
func WriteCSV(w io.Writer, s *market.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range s.Bars() {
		rec := []string{
			b.Time().Format(csvTimeLayout),
			ff(b.Open), ff(b.High), ff(b.Low), ff(b.Close), ff(b.Volume),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// ReadCSV parses a file written by WriteCSV. Columns are located by header
// name so extra columns are ignored; an empty Volume reads as zero.
func ReadCSV(r io.Reader, symbol string, tf market.Timeframe) (*market.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: missing header")
		}
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, h := range csvHeader {
		if _, ok := idx[h]; !ok {
			return nil, fmt.Errorf("csv: missing column %q", h)
		}
	}

	var bars []market.Bar
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		ts, err := parseTime(rec[idx["Datetime"]])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		var vals [5]float64
		for i, col := range csvHeader[1:] {
			raw := strings.TrimSpace(rec[idx[col]])
			if raw == "" && col == "Volume" {
				continue
			}
			vals[i], err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d %s: %w", line, col, err)
			}
		}
		bars = append(bars, market.Bar{
			Timestamp: ts.Unix(),
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}
	return market.NewSeries(symbol, tf, bars), nil
}

var timeLayouts = []string{
	csvTimeLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
