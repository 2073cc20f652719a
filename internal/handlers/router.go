package handlers

import (
	"net/http"

	"budget/internal/config"
	"budget/internal/db"
	"budget/internal/middleware"
	"budget/internal/store"
	"budget/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	loanDB       store.Selecter
	txRunner     db.TxRunner
	cfg          config.Config
	users        UserStore
	accounts     AccountStore
	transactions TransactionStore
	imports      ImportStore
	loans        LoanStore
	deposits     DepositStore
	audit        AuditStore
	importer     ImportService
	manual       TransactionService
	reconciler   LoanService
	rates        RateService
	hub          *websocket.Hub
}

func New(loanDB store.Selecter, txRunner db.TxRunner, cfg config.Config, users UserStore, accounts AccountStore, transactions TransactionStore, imports ImportStore, loans LoanStore, deposits DepositStore, audit AuditStore, importer ImportService, manual TransactionService, reconciler LoanService, rates RateService, hub *websocket.Hub) *Handler {
	return &Handler{
		loanDB:       loanDB,
		txRunner:     txRunner,
		cfg:          cfg,
		users:        users,
		accounts:     accounts,
		transactions: transactions,
		imports:      imports,
		loans:        loans,
		deposits:     deposits,
		audit:        audit,
		importer:     importer,
		manual:       manual,
		reconciler:   reconciler,
		rates:        rates,
		hub:          hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})
	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/accounts", h.ListAccounts)
		r.Post("/imports", h.UploadStatement)
		r.Get("/imports", h.ListImports)
		r.Get("/imports/{id}/skipped", h.ListSkipped)
		r.Get("/transactions", h.ListTransactions)
		r.Post("/transactions", h.CreateTransaction)
		r.Delete("/transactions/{id}", h.DeleteTransaction)
		r.Get("/loans", h.ListLoans)
		r.Post("/loans", h.CreateLoan)
		r.Post("/loans/reconcile", h.ReconcileLoans)
		r.Get("/deposits", h.ListDeposits)
		r.Post("/deposits", h.CreateDeposit)
		r.Get("/rates", h.GetRate)
		r.Get("/rates/convert", h.ConvertAmount)
		r.Post("/rates/ensure", h.EnsureRates)
		r.Put("/rates", h.SetManualRate)
		r.Get("/audit", h.ListAuditLogs)
	})
	router.Get("/ws/imports", h.WSImports)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
