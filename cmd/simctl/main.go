// Command simctl inspects and administers the simulator's account store
// from the shell, using the same configuration as the server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cryptosim/configs"
	"cryptosim/internal/domain"
	"cryptosim/internal/infra"
	"cryptosim/internal/service"
	"cryptosim/internal/usecase"
)

// app bundles what every subcommand needs
type app struct {
	ledger  *usecase.LedgerService
	market  *service.MarketDataService
	logger  *zap.Logger
	release func()
}

func open(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	cfg, err := configs.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := infra.NewLogger("warn", cfg.Server.Env)
	if err != nil {
		return nil, err
	}

	repo, release, err := infra.NewAccountRepository(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	provider, err := infra.NewQuoteProvider(cfg.Market)
	if err != nil {
		release()
		return nil, err
	}
	market := service.NewMarketDataService(provider, logger)

	creds, err := service.NewCredentialPolicy(cfg.Auth.PasswordStorage)
	if err != nil {
		release()
		return nil, err
	}

	ledger := usecase.NewLedgerService(repo, market, creds,
		domain.TradeExecutor{PriceTolerance: cfg.Trading.PriceTolerance}, cfg.Auth.AdminUsernames, logger)

	return &app{ledger: ledger, market: market, logger: logger, release: release}, nil
}

func (a *app) close() {
	a.release()
	_ = a.logger.Sync()
}

// withApp opens the store around a subcommand action
func withApp(action func(ctx context.Context, cmd *cli.Command, a *app) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		a, err := open(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return action(ctx, cmd, a)
	}
}

func accountsAction(ctx context.Context, cmd *cli.Command, a *app) error {
	accounts, err := a.ledger.ListAccounts(ctx)
	if err != nil {
		return err
	}
	return printAccounts(cmd.Root().Writer, accounts)
}

func printAccounts(out io.Writer, accounts []*domain.Account) error {
	if len(accounts) == 0 {
		_, err := fmt.Fprintln(out, "no accounts")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tBALANCE USD\tHOLDINGS\tLAST ACTIVITY")
	for _, acct := range accounts {
		last := "-"
		if entries := acct.Activity.Entries(); len(entries) > 0 {
			last = entries[0].Description
		}
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\n", acct.Username, acct.BalanceUSD, formatHoldings(acct.Holdings), last)
	}
	return w.Flush()
}

func formatHoldings(holdings map[string]float64) string {
	if len(holdings) == 0 {
		return "-"
	}
	symbols := make([]string, 0, len(holdings))
	for sym := range holdings {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	parts := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		parts = append(parts, fmt.Sprintf("%s=%.6f", sym, holdings[sym]))
	}
	return strings.Join(parts, " ")
}

func leaderboardAction(ctx context.Context, cmd *cli.Command, a *app) error {
	if _, err := a.market.Refresh(ctx); err != nil {
		fmt.Fprintf(cmd.Root().ErrWriter, "warning: no market data, holdings count as 0: %v\n", err)
	}

	entries, err := a.ledger.Leaderboard(ctx)
	if err != nil {
		return err
	}
	return printLeaderboard(cmd.Root().Writer, entries)
}

func printLeaderboard(out io.Writer, entries []domain.RankEntry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tUSERNAME\tNET WORTH USD\tUNPRICED")
	for _, e := range entries {
		unpriced := "-"
		if len(e.UnpricedSymbols) > 0 {
			unpriced = strings.Join(e.UnpricedSymbols, ",")
		}
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\n", e.Rank, e.Username, e.NetWorthUSD, unpriced)
	}
	return w.Flush()
}

func marketAction(ctx context.Context, cmd *cli.Command, a *app) error {
	if _, err := a.market.Refresh(ctx); err != nil {
		return err
	}

	query := usecase.MarketQuery{Search: cmd.String("q"), Ascending: cmd.Bool("asc")}
	if raw := cmd.String("sort"); raw != "" {
		field, err := domain.ParseSortField(raw)
		if err != nil {
			return err
		}
		query.Sort = field
	}

	listing, err := a.ledger.Market(query)
	if err != nil {
		return err
	}
	return printMarket(cmd.Root().Writer, listing.Quotes)
}

func printMarket(out io.Writer, quotes []domain.Quote) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tNAME\tPRICE USD\tMARKET CAP USD\t24H %")
	for _, q := range quotes {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.0f\t%.2f\n", q.Symbol, q.Name, q.PriceUSD, q.MarketCapUSD, q.Change24hPct)
	}
	return w.Flush()
}

// requireYes guards destructive commands before anything is opened
func requireYes(next cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if !cmd.Bool("yes") {
			return errors.New("refusing to delete all accounts without --yes")
		}
		return next(ctx, cmd)
	}
}

func resetAction(ctx context.Context, cmd *cli.Command, a *app) error {
	if err := a.ledger.ResetAll(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(cmd.Root().Writer, "All user data has been reset.")
	return err
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "simctl",
		Usage: "Administer the crypto trading simulator",
		Commands: []*cli.Command{
			{
				Name:   "accounts",
				Usage:  "List every account with balance and holdings",
				Action: withApp(accountsAction),
			},
			{
				Name:   "leaderboard",
				Usage:  "Rank accounts by net worth at current prices",
				Action: withApp(leaderboardAction),
			},
			{
				Name:  "market",
				Usage: "Fetch and list current quotes",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "q", Usage: "Filter by name or symbol"},
					&cli.StringFlag{Name: "sort", Usage: "Sort by price, market_cap or change_24h"},
					&cli.BoolFlag{Name: "asc", Usage: "Sort ascending (default descending)"},
				},
				Action: withApp(marketAction),
			},
			{
				Name:  "reset",
				Usage: "Delete all accounts",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "Confirm the reset"},
				},
				Action: requireYes(withApp(resetAction)),
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
