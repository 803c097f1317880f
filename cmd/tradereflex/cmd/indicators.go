package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradereflex/feed"
	"github.com/rustyeddy/tradereflex/indicators"
	"github.com/rustyeddy/tradereflex/market"
)

var indicatorsCmd = &cobra.Command{
	Use:   "indicators FILE",
	Short: "Compute VWAP, EMA9 and support/resistance from a CSV",
	Long: `Read a bar CSV written by fetch and print the indicator values of the
last bars. Support/resistance levels are only computed for 1day data.

Example:
  tradereflex indicators AAPL_7d_1day.csv --timeframe 1day`,
	Args: cobra.ExactArgs(1),
	RunE: runIndicators,
}

var (
	indicatorsTimeframe string
	indicatorsTail      int
)

func init() {
	rootCmd.AddCommand(indicatorsCmd)
	indicatorsCmd.Flags().StringVarP(&indicatorsTimeframe, "timeframe", "t", "", "timeframe of the file (guessed from the name when empty)")
	indicatorsCmd.Flags().IntVarP(&indicatorsTail, "tail", "n", 10, "number of bars to print")
}

func runIndicators(cmd *cobra.Command, args []string) error {
	path := args[0]
	tf, err := timeframeFor(path, indicatorsTimeframe)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	symbol := strings.SplitN(filepath.Base(path), "_", 2)[0]
	s, err := feed.ReadCSV(f, symbol, tf)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	res := indicators.Compute(s)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s: %d bars", s.Symbol(), tf, s.Len())
	if !s.Monotonic() {
		fmt.Fprint(out, " (timestamps not strictly increasing)")
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "time\tclose\tvolume\tvwap\tema9\t")
	start := max(0, s.Len()-indicatorsTail)
	for i := start; i < s.Len(); i++ {
		b := s.Bar(i)
		fmt.Fprintf(tw, "%s\t%.2f\t%.0f\t%s\t%s\t\n",
			b.Time().Format("2006-01-02 15:04"), b.Close, b.Volume, optional(res.VWAP[i]), optional(res.EMA9[i]))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if tf.Daily() {
		fmt.Fprintf(out, "support/resistance: %v\n", res.Levels)
	}
	return nil
}

func optional(o indicators.Optional) string {
	v, ok := o.Get()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// timeframeFor uses flag when set, otherwise the trailing _<tf>.csv of
// the file name.
func timeframeFor(path, flag string) (market.Timeframe, error) {
	if flag != "" {
		return market.ParseTimeframe(flag)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.LastIndex(base, "_"); i >= 0 {
		if tf, err := market.ParseTimeframe(base[i+1:]); err == nil {
			return tf, nil
		}
	}
	return "", fmt.Errorf("cannot tell the timeframe of %s, use --timeframe", path)
}
