package currency_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/crmbot/internal/config"
	"github.com/edgard/crmbot/internal/currency"
	"github.com/edgard/crmbot/internal/database"
)

type fakeRateStore struct {
	rows    []database.CurrencyRate
	saved   []database.CurrencyRate
	getErr  error
	saveErr error
}

func (f *fakeRateStore) GetCurrencyRates(context.Context) ([]database.CurrencyRate, error) {
	return f.rows, f.getErr
}

func (f *fakeRateStore) SaveCurrencyRates(_ context.Context, rates []database.CurrencyRate) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, rates...)
	return nil
}

func testConfig() config.CurrencyConfig {
	return config.CurrencyConfig{
		List:    []string{"USD", "EUR", "UAH"},
		Default: "USD",
		Base:    "USD",
		Rates:   map[string]float64{"EUR": 1.2},
	}
}

func TestRates(t *testing.T) {
	t.Parallel()

	r, err := currency.FromMap("usd", map[string]float64{"eur": 1.2})
	require.NoError(t, err)

	assert.Equal(t, "USD", r.Base())
	assert.Equal(t, []string{"EUR", "USD"}, r.Codes())
	assert.True(t, r.HasRate("EUR"))
	assert.False(t, r.HasRate("UAH"))

	base, ok := r.Rate("USD")
	require.True(t, ok)
	assert.True(t, base.Equal(decimal.NewFromInt(1)))

	next, err := r.WithRate("UAH", decimal.RequireFromString("0.027"))
	require.NoError(t, err)
	assert.True(t, next.HasRate("UAH"))
	assert.False(t, r.HasRate("UAH"), "WithRate must not modify the receiver")

	same, err := r.WithRate("USD", decimal.NewFromInt(5))
	require.NoError(t, err)
	base, _ = same.Rate("USD")
	assert.True(t, base.Equal(decimal.NewFromInt(1)))

	_, err = r.WithRate("EUR", decimal.Zero)
	assert.ErrorIs(t, err, currency.ErrInvalidRate)

	_, err = currency.FromMap("USD", map[string]float64{"EUR": -1})
	assert.ErrorIs(t, err, currency.ErrInvalidRate)

	_, err = currency.FromStrings("USD", map[string]string{"EUR": "abc"})
	assert.ErrorIs(t, err, currency.ErrInvalidRate)
}

func TestAmount(t *testing.T) {
	t.Parallel()

	a, err := currency.NewAmount("10.1", "usd")
	require.NoError(t, err)
	b, err := currency.NewAmount("0.1", "USD")
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "10.2000", sum.AmountString())
	assert.Equal(t, "10.2000 USD", sum.String())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "10.0000", diff.AmountString())

	cmp, err := b.Compare(a)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	eur, err := currency.NewAmount("1", "EUR")
	require.NoError(t, err)
	_, err = a.Add(eur)
	assert.ErrorIs(t, err, currency.ErrCurrencyMismatch)
	_, err = a.Subtract(eur)
	assert.ErrorIs(t, err, currency.ErrCurrencyMismatch)
	_, err = a.Compare(eur)
	assert.ErrorIs(t, err, currency.ErrCurrencyMismatch)

	_, err = currency.NewAmount("ten", "USD")
	assert.Error(t, err)
	_, err = currency.NewAmount("10", " ")
	assert.ErrorIs(t, err, currency.ErrUnknownCurrency)
}

func TestAmount_Convert(t *testing.T) {
	t.Parallel()

	rates, err := currency.FromStrings("USD", map[string]string{"EUR": "1.2", "UAH": "0.025"})
	require.NoError(t, err)

	eur, err := currency.NewAmount("10", "EUR")
	require.NoError(t, err)

	usd, err := eur.Convert("USD", rates)
	require.NoError(t, err)
	assert.Equal(t, "12.0000 USD", usd.String())

	uah, err := eur.Convert("uah", rates)
	require.NoError(t, err)
	assert.Equal(t, "480.0000 UAH", uah.String())

	same, err := eur.Convert("EUR", rates)
	require.NoError(t, err)
	assert.Equal(t, eur, same)

	_, err = eur.Convert("GBP", rates)
	assert.ErrorIs(t, err, currency.ErrUnknownCurrency)
}

func TestRateService_Get(t *testing.T) {
	t.Parallel()

	store := &fakeRateStore{rows: []database.CurrencyRate{
		{Code: "EUR", Rate: "1.3"},
		{Code: "UAH", Rate: "0.027"},
		{Code: "GBP", Rate: "garbage"},
	}}
	svc := currency.NewRateService(store, testConfig(), nil)

	rates, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "USD", rates.Base())
	assert.Equal(t, []string{"EUR", "UAH", "USD"}, rates.Codes())

	eur, _ := rates.Rate("EUR")
	assert.Equal(t, "1.3", eur.String())

	store.getErr = errors.New("boom")
	_, err = svc.Get(context.Background())
	assert.Error(t, err)
}

func TestRateService_Set(t *testing.T) {
	t.Parallel()

	store := &fakeRateStore{}
	svc := currency.NewRateService(store, testConfig(), nil)

	rates, err := currency.FromStrings("EUR", map[string]string{
		"USD": "0.9",
		"UAH": "0.03",
		"GBP": "1.1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Set(context.Background(), rates))
	assert.Equal(t, []database.CurrencyRate{{Code: "UAH", Rate: "0.03"}}, store.saved,
		"only listed currencies other than both bases are written")

	store.saved = nil
	require.NoError(t, svc.Set(context.Background(), currency.NewRates("USD")))
	assert.Empty(t, store.saved)
}

func TestRateService_SetRate(t *testing.T) {
	t.Parallel()

	store := &fakeRateStore{}
	svc := currency.NewRateService(store, testConfig(), nil)
	ctx := context.Background()

	rates, err := svc.SetRate(ctx, "uah", "0.026")
	require.NoError(t, err)
	uah, _ := rates.Rate("UAH")
	assert.Equal(t, "0.026", uah.String())
	assert.ElementsMatch(t, []database.CurrencyRate{
		{Code: "EUR", Rate: "1.2"},
		{Code: "UAH", Rate: "0.026"},
	}, store.saved)

	_, err = svc.SetRate(ctx, "USD", "2")
	assert.ErrorIs(t, err, currency.ErrInvalidRate)

	_, err = svc.SetRate(ctx, "GBP", "2")
	assert.ErrorIs(t, err, currency.ErrUnknownCurrency)

	_, err = svc.SetRate(ctx, "EUR", "-1")
	assert.ErrorIs(t, err, currency.ErrInvalidRate)

	_, err = svc.SetRate(ctx, "EUR", "x")
	assert.ErrorIs(t, err, currency.ErrInvalidRate)

	store.saveErr = errors.New("disk full")
	_, err = svc.SetRate(ctx, "EUR", "1.1")
	assert.Error(t, err)
}
