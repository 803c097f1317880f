package market

import (
	"fmt"
	"strings"
)

// Timeframe labels the granularity of a Series.
type Timeframe string

const (
	TF1Min  Timeframe = "1min"
	TF1Hour Timeframe = "1hour"
	TF1Day  Timeframe = "1day"
)

// Timeframes lists every supported timeframe, finest first.
var Timeframes = []Timeframe{TF1Min, TF1Hour, TF1Day}

// Interval returns the provider interval string, e.g. "1m" for 1min.
func (tf Timeframe) Interval() string {
	switch tf {
	case TF1Min:
		return "1m"
	case TF1Hour:
		return "1h"
	case TF1Day:
		return "1d"
	}
	return ""
}

// Daily reports whether support/resistance levels apply to the timeframe.
func (tf Timeframe) Daily() bool { return tf == TF1Day }

func (tf Timeframe) Valid() bool { return tf.Interval() != "" }

func (tf Timeframe) String() string { return string(tf) }

// ParseTimeframe accepts either the label ("1hour") or the interval ("1h").
func ParseTimeframe(s string) (Timeframe, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, tf := range Timeframes {
		if s == string(tf) || s == tf.Interval() {
			return tf, nil
		}
	}
	return "", fmt.Errorf("unknown timeframe %q", s)
}
