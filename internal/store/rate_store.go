package store

import (
	"context"
	"time"

	"budget/internal/models"

	"github.com/lib/pq"
)

type RateStore struct {
	db DB
}

func NewRateStore(db DB) *RateStore {
	return &RateStore{db: db}
}

func (s *RateStore) GetByCurrencyDate(ctx context.Context, currency string, date time.Time) (models.ExchangeRate, error) {
	var row models.ExchangeRate
	err := s.db.GetContext(ctx, &row, `
		SELECT id, currency, rate, quantity, feed_rate, date, source
		FROM exchange_rates
		WHERE currency = $1 AND date = $2
	`, currency, date)
	if err != nil {
		return models.ExchangeRate{}, err
	}
	return row, nil
}

// ListByDates returns all stored rates for the given dates in one query.
func (s *RateStore) ListByDates(ctx context.Context, dates []time.Time) ([]models.ExchangeRate, error) {
	var rows []models.ExchangeRate
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, currency, rate, quantity, feed_rate, date, source
		FROM exchange_rates
		WHERE date = ANY($1)
	`, pq.Array(dates))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Insert persists one rate row. Concurrent resolvers can race on the same
// (currency, date); ON CONFLICT DO NOTHING keeps the first writer's row.
func (s *RateStore) Insert(ctx context.Context, rate models.ExchangeRate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchange_rates (id, currency, rate, quantity, feed_rate, date, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (currency, date) DO NOTHING
	`, rate.ID, rate.Currency, rate.Rate, rate.Quantity, rate.FeedRate, rate.Date, rate.Source)
	return err
}

// Update is the general operator-facing update path.
func (s *RateStore) Update(ctx context.Context, rate models.ExchangeRate) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE exchange_rates
		SET rate = $1, quantity = $2, feed_rate = $3, source = $4
		WHERE currency = $5 AND date = $6
	`, rate.Rate, rate.Quantity, rate.FeedRate, rate.Source, rate.Currency, rate.Date)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
