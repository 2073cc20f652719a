package main

import (
	"fmt"
	"os"
	"time"

	"budget/internal/config"
	"budget/internal/db"
	"budget/internal/money"
	"budget/internal/ratefeed"
	"budget/internal/services"
	"budget/internal/store"
	"budget/internal/websocket"

	"github.com/spf13/cobra"
)

type app struct {
	database   dbCloser
	importer   *services.ImportService
	reconciler *services.LoanService
	rates      *services.RateService
}

type dbCloser interface {
	Close() error
}

func newApp() (*app, error) {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	accounts := store.NewAccountStore(database)
	transactions := store.NewTransactionStore(database)
	imports := store.NewImportStore(database)
	loans := store.NewLoanStore(database)
	rates := store.NewRateStore(database)
	deposits := store.NewDepositStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	feed := ratefeed.NewClient(cfg.RateFeedURL, cfg.RateFeedTimeout)

	return &app{
		database:   database,
		importer:   services.NewImportService(txRunner, accounts, transactions, imports, deposits, audit, websocket.NewHub()),
		reconciler: services.NewLoanService(txRunner, loans, transactions, audit),
		rates:      services.NewRateService(cfg.BaseCurrency, rates, feed),
	}, nil
}

func newImportCmd() *cobra.Command {
	var userID string
	var accountID string
	cmd := &cobra.Command{
		Use:   "import <statement.xlsx>",
		Short: "Import a bank statement workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.database.Close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			req := services.ImportRequest{
				UserID:   userID,
				FileName: args[0],
				Data:     data,
			}
			if accountID != "" {
				req.AccountID = &accountID
			}
			summary, err := a.importer.Import(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Printf("import %s: %d created, %d skipped of %d rows\n",
				summary.ImportID, summary.Created, summary.Skipped, summary.Total)
			if summary.LoanCostMinor > 0 {
				fmt.Printf("loan interest paid this period: %s\n", money.FormatMinor(summary.LoanCostMinor))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "owning user id")
	cmd.Flags().StringVar(&accountID, "account", "", "target account id (default: resolve by IBAN)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newReconcileCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Re-link loan repayments and interest for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.database.Close()

			summary, err := a.reconciler.Reconcile(cmd.Context(), userID)
			if err != nil {
				return err
			}
			fmt.Printf("linked %d repayments and %d interest rows, %d loans still open\n",
				summary.RepaymentsLinked, summary.InterestLinked, summary.LoansUnpaid)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "owning user id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newRatesCmd() *cobra.Command {
	var currency string
	var dateRaw string
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Resolve an exchange rate for a currency and date",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := time.Parse("2006-01-02", dateRaw)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.database.Close()

			rate, err := a.rates.GetRate(cmd.Context(), currency, date)
			if err != nil {
				return err
			}
			fmt.Printf("%s on %s: %s\n", currency, dateRaw, rate.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "USD", "ISO currency code")
	cmd.Flags().StringVar(&dateRaw, "date", time.Now().Format("2006-01-02"), "rate date (YYYY-MM-DD)")
	return cmd
}
