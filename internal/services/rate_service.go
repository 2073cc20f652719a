package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"budget/internal/models"
	"budget/internal/ratefeed"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrRateNotFound = errors.New("exchange rate not found")

// trackedCurrencies limits which feed entries get persisted; the feed
// returns many more currencies than the tracker cares about.
var trackedCurrencies = map[string]struct{}{
	"USD": {}, "EUR": {}, "GBP": {}, "CHF": {},
	"TRY": {}, "RUB": {}, "AMD": {}, "AZN": {}, "ILS": {},
}

type RateStore interface {
	GetByCurrencyDate(ctx context.Context, currency string, date time.Time) (models.ExchangeRate, error)
	ListByDates(ctx context.Context, dates []time.Time) ([]models.ExchangeRate, error)
	Insert(ctx context.Context, rate models.ExchangeRate) error
	Update(ctx context.Context, rate models.ExchangeRate) (int64, error)
}

type RateFeed interface {
	RatesForDate(ctx context.Context, date time.Time) ([]ratefeed.Rate, error)
}

type RateService struct {
	baseCurrency string
	rates        RateStore
	feed         RateFeed
}

func NewRateService(baseCurrency string, rates RateStore, feed RateFeed) *RateService {
	return &RateService{baseCurrency: baseCurrency, rates: rates, feed: feed}
}

var one = decimal.NewFromInt(1)

// GetRate resolves the base-units-per-unit rate for a currency on a date,
// fetching the whole day from the feed on a miss. The base currency is
// always 1.0 and never hits storage.
func (s *RateService) GetRate(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error) {
	if currency == s.baseCurrency {
		return one, nil
	}
	day := truncateToDay(date)
	row, err := s.rates.GetByCurrencyDate(ctx, currency, day)
	if errors.Is(err, sql.ErrNoRows) {
		if _, fetchErr := s.fetchAndStore(ctx, day); fetchErr != nil {
			return decimal.Decimal{}, fmt.Errorf("%w: %s on %s: %v", ErrRateNotFound, currency, day.Format("2006-01-02"), fetchErr)
		}
		row, err = s.rates.GetByCurrencyDate(ctx, currency, day)
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Decimal{}, fmt.Errorf("%w: %s on %s", ErrRateNotFound, currency, day.Format("2006-01-02"))
		}
	}
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(row.Rate)
}

// ConvertAmount converts minor units between currencies through the base
// currency: amount × rate(from) ÷ rate(to), banker-rounded to minor units.
func (s *RateService) ConvertAmount(ctx context.Context, amountMinor int64, from, to string, date time.Time) (int64, error) {
	if from == to {
		return amountMinor, nil
	}
	fromRate, err := s.GetRate(ctx, from, date)
	if err != nil {
		return 0, err
	}
	toRate, err := s.GetRate(ctx, to, date)
	if err != nil {
		return 0, err
	}
	return decimal.NewFromInt(amountMinor).Mul(fromRate).Div(toRate).RoundBank(0).IntPart(), nil
}

type RatePair struct {
	Currency string
	Date     time.Time
}

// RateKey is how EnsureRatesForDates keys its result map.
func RateKey(currency string, date time.Time) string {
	return currency + "|" + date.Format("2006-01-02")
}

// EnsureRatesForDates resolves a batch of (currency, date) pairs with one
// storage query for the whole set and at most one feed fetch per distinct
// missing non-base date. Base-currency dates get a synthetic 1.0 row instead
// of a fetch. A failed fetch leaves that date's pairs out of the result.
func (s *RateService) EnsureRatesForDates(ctx context.Context, pairs []RatePair) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal)
	wanted := make(map[string]RatePair)
	dateSet := make(map[time.Time]struct{})
	for _, pair := range pairs {
		day := truncateToDay(pair.Date)
		key := RateKey(pair.Currency, day)
		if _, ok := wanted[key]; ok {
			continue
		}
		wanted[key] = RatePair{Currency: pair.Currency, Date: day}
		if pair.Currency != s.baseCurrency {
			dateSet[day] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for day := range dateSet {
		dates = append(dates, day)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	stored, err := s.rates.ListByDates(ctx, dates)
	if err != nil {
		return nil, err
	}
	for _, row := range stored {
		rate, err := decimal.NewFromString(row.Rate)
		if err != nil {
			return nil, err
		}
		result[RateKey(row.Currency, truncateToDay(row.Date))] = rate
	}

	missingDates := make(map[time.Time]struct{})
	for key, pair := range wanted {
		if pair.Currency == s.baseCurrency {
			result[key] = one
			if err := s.rates.Insert(ctx, models.ExchangeRate{
				ID:       uuid.NewString(),
				Currency: s.baseCurrency,
				Rate:     "1",
				Quantity: 1,
				FeedRate: "1",
				Date:     pair.Date,
				Source:   models.RateSourceManual,
			}); err != nil {
				return nil, err
			}
			continue
		}
		if _, ok := result[key]; !ok {
			missingDates[pair.Date] = struct{}{}
		}
	}

	fetchDates := make([]time.Time, 0, len(missingDates))
	for day := range missingDates {
		fetchDates = append(fetchDates, day)
	}
	sort.Slice(fetchDates, func(i, j int) bool { return fetchDates[i].Before(fetchDates[j]) })

	for _, day := range fetchDates {
		fetched, err := s.fetchAndStore(ctx, day)
		if err != nil {
			log.Printf("rates: fetch for %s failed: %v", day.Format("2006-01-02"), err)
			continue
		}
		for _, row := range fetched {
			key := RateKey(row.Currency, truncateToDay(row.Date))
			if _, ok := wanted[key]; !ok {
				continue
			}
			rate, err := decimal.NewFromString(row.Rate)
			if err != nil {
				return nil, err
			}
			result[key] = rate
		}
	}
	return result, nil
}

// SetManualRate overrides (or seeds) the stored rate for a currency on a
// date. Manual rows win over later feed fetches because fetches insert with
// ON CONFLICT DO NOTHING.
func (s *RateService) SetManualRate(ctx context.Context, currency string, date time.Time, rate decimal.Decimal) error {
	row := models.ExchangeRate{
		ID:       uuid.NewString(),
		Currency: currency,
		Rate:     rate.String(),
		Quantity: 1,
		FeedRate: rate.String(),
		Date:     truncateToDay(date),
		Source:   models.RateSourceManual,
	}
	affected, err := s.rates.Update(ctx, row)
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.rates.Insert(ctx, row)
	}
	return nil
}

// fetchAndStore pulls one day's rates from the feed and persists every
// tracked currency as rate ÷ quantity.
func (s *RateService) fetchAndStore(ctx context.Context, day time.Time) ([]models.ExchangeRate, error) {
	entries, err := s.feed.RatesForDate(ctx, day)
	if err != nil {
		return nil, err
	}
	rows := make([]models.ExchangeRate, 0, len(entries))
	for _, entry := range entries {
		if _, ok := trackedCurrencies[entry.Code]; !ok {
			continue
		}
		quantity := entry.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		perUnit := entry.Rate.Div(decimal.NewFromInt(int64(quantity)))
		row := models.ExchangeRate{
			ID:       uuid.NewString(),
			Currency: entry.Code,
			Rate:     perUnit.String(),
			Quantity: quantity,
			FeedRate: entry.Rate.String(),
			Date:     day,
			Source:   models.RateSourceFeed,
		}
		if err := s.rates.Insert(ctx, row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
