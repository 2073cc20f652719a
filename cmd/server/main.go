package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"budget/internal/config"
	"budget/internal/db"
	"budget/internal/handlers"
	"budget/internal/ratefeed"
	"budget/internal/services"
	"budget/internal/store"
	"budget/internal/websocket"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	accounts := store.NewAccountStore(database)
	transactions := store.NewTransactionStore(database)
	imports := store.NewImportStore(database)
	loans := store.NewLoanStore(database)
	rates := store.NewRateStore(database)
	deposits := store.NewDepositStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()
	feed := ratefeed.NewClient(cfg.RateFeedURL, cfg.RateFeedTimeout)

	importer := services.NewImportService(txRunner, accounts, transactions, imports, deposits, audit, hub)
	manual := services.NewTransactionService(txRunner, transactions, loans, audit)
	reconciler := services.NewLoanService(txRunner, loans, transactions, audit)
	rateService := services.NewRateService(cfg.BaseCurrency, rates, feed)

	handler := handlers.New(database, txRunner, cfg, users, accounts, transactions, imports, loans, deposits, audit, importer, manual, reconciler, rateService, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("budget API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
