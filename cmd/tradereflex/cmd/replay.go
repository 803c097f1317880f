package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradereflex/journal"
	"github.com/rustyeddy/tradereflex/ledger"
	"github.com/rustyeddy/tradereflex/market"
	"github.com/rustyeddy/tradereflex/replay"
	"github.com/rustyeddy/tradereflex/session"
	"github.com/rustyeddy/tradereflex/sim"
)

var replayCmd = &cobra.Command{
	Use:   "replay SCRIPT",
	Short: "Run a scripted paper-trading session offline",
	Long: `Replay a CSV of bars and orders through the simulator and print the
resulting fills and accounts.

Script rows:
  time,symbol,open,high,low,close[,volume[,event,arg1]]

Events: START, BUY <qty>, SELL <qty>.

Example:
  tradereflex replay session.csv --user alice --db ./tradereflex.sqlite`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

var (
	replayUser       string
	replaySymbols    []string
	replayBalance    float64
	replayStrict     bool
	replayEventFirst bool
	replayDB         string
)

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringVarP(&replayUser, "user", "u", replay.DefaultUser, "user that owns the orders")
	replayCmd.Flags().StringSliceVar(&replaySymbols, "symbols", market.DefaultSymbols, "tradable symbols")
	replayCmd.Flags().Float64Var(&replayBalance, "balance", 10000, "initial session balance")
	replayCmd.Flags().BoolVar(&replayStrict, "strict", false, "stop at the first rejected order")
	replayCmd.Flags().BoolVar(&replayEventFirst, "event-first", false, "apply each row's order before its bar")
	replayCmd.Flags().StringVarP(&replayDB, "db", "d", "", "journal fills to this SQLite DB")
}

func runReplay(cmd *cobra.Command, args []string) error {
	log := cliLogger()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var j journal.Journal = journal.Nop{}
	if replayDB != "" {
		sj, err := journal.NewSQLite(replayDB)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer sj.Close()
		j = sj
	}

	l := ledger.New()
	book := market.NewPriceBook()
	sessions := session.NewManager(l, market.NewSymbols(replaySymbols...),
		session.WithInitialBalance(replayBalance),
		session.WithJournal(j),
		session.WithLogger(log),
	)
	engine := sim.NewEngine(l, book, sim.WithJournal(j), sim.WithLogger(log))

	runner := replay.NewRunner(book, sessions, engine, replay.Options{
		User:       replayUser,
		EventFirst: replayEventFirst,
		Strict:     replayStrict,
		Log:        log,
	})
	res, err := runner.Run(cmd.Context(), f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d bars, %d fills, %d rejected\n", res.Bars, len(res.Fills), len(res.Rejected))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, fill := range res.Fills {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t\n",
			fill.Trade.Timestamp.Format("2006-01-02 15:04:05"), fill.Account.Symbol, fill.Trade.Side, fill.Trade.Quantity, fill.Trade.Price)
	}
	for _, r := range res.Rejected {
		fmt.Fprintf(tw, "line %d\trejected\t%s\t\n", r.Line, sim.RejectReason(r.Err))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	keys := l.Keys()
	sort.Slice(keys, func(a, b int) bool { return keys[a].String() < keys[b].String() })
	for _, k := range keys {
		acct, err := l.Account(k)
		if err != nil {
			continue
		}
		fmt.Fprintf(out, "%s: balance %.2f, positions %d\n", k, acct.Balance, acct.Positions)
	}
	return nil
}
