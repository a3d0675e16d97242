package paper

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
)

func funded(t *testing.T, cash float64) *Account {
	t.Helper()
	account := NewAccount()
	if err := account.Recapitalize(cash); err != nil {
		t.Fatalf("Recapitalize returned error: %v", err)
	}
	return account
}

func TestBuyDebitsCashAndCreditsShares(t *testing.T) {
	account := funded(t, 1000)

	if err := account.Buy("AAPL", 100.0, 5); err != nil {
		t.Fatalf("unexpected buy error: %v", err)
	}
	if account.Cash() != 500.0 {
		t.Fatalf("expected cash 500, got %.2f", account.Cash())
	}
	if account.Position("AAPL") != 5 {
		t.Fatalf("expected 5 shares, got %d", account.Position("AAPL"))
	}

	err := account.Buy("AAPL", 200.0, 10)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if account.Cash() != 500.0 || account.Position("AAPL") != 5 {
		t.Fatalf("rejected buy mutated state: cash %.2f qty %d", account.Cash(), account.Position("AAPL"))
	}
}

func TestBuyWithEntireCash(t *testing.T) {
	account := funded(t, 1000)

	qty, err := account.BuyWithEntireCash("AAPL", 100.0)
	if err != nil {
		t.Fatalf("unexpected buy error: %v", err)
	}
	if qty != 10 || account.Position("AAPL") != 10 {
		t.Fatalf("expected 10 shares, got qty=%d position=%d", qty, account.Position("AAPL"))
	}
	if account.Cash() != 0.0 {
		t.Fatalf("expected cash 0, got %.2f", account.Cash())
	}

	if _, err := account.BuyWithEntireCash("AAPL", 1500.0); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestBuyWithEntireCashLeavesRemainder(t *testing.T) {
	account := funded(t, 1000)
	qty, err := account.BuyWithEntireCash("MSFT", 300.0)
	if err != nil {
		t.Fatalf("unexpected buy error: %v", err)
	}
	if qty != 3 || account.Cash() != 100.0 {
		t.Fatalf("expected 3 shares and 100 cash, got %d and %.2f", qty, account.Cash())
	}
}

func TestSellCreditsCashAndDropsEmptyPositions(t *testing.T) {
	account := funded(t, 1000)
	if err := account.Buy("AAPL", 100.0, 5); err != nil {
		t.Fatalf("unexpected buy error: %v", err)
	}
	before := account.Cash()

	if err := account.Sell("AAPL", 200.0, 2); err != nil {
		t.Fatalf("unexpected sell error: %v", err)
	}
	if account.Cash()-before != 400.0 {
		t.Fatalf("expected cash to rise by 400, got %.2f", account.Cash()-before)
	}
	if account.Position("AAPL") != 3 {
		t.Fatalf("expected 3 shares, got %d", account.Position("AAPL"))
	}

	if err := account.Sell("AAPL", 200.0, 10); !errors.Is(err, ErrInsufficientHoldings) {
		t.Fatalf("expected ErrInsufficientHoldings, got %v", err)
	}
	if account.Position("AAPL") != 3 {
		t.Fatalf("rejected sell mutated holdings")
	}

	if err := account.Sell("AAPL", 200.0, 3); err != nil {
		t.Fatalf("unexpected sell error: %v", err)
	}
	if account.Owns("AAPL") {
		t.Fatalf("position should be removed at zero")
	}
	summary, err := account.Summary(nil)
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	if _, ok := summary.Positions["AAPL"]; ok {
		t.Fatalf("zero quantity must not be stored")
	}
}

func TestSellAll(t *testing.T) {
	account := funded(t, 1000)
	if _, err := account.SellAll("AAPL", 100); !errors.Is(err, ErrInsufficientHoldings) {
		t.Fatalf("expected ErrInsufficientHoldings, got %v", err)
	}
	if err := account.Buy("AAPL", 100.0, 4); err != nil {
		t.Fatalf("unexpected buy error: %v", err)
	}
	qty, err := account.SellAll("AAPL", 150)
	if err != nil {
		t.Fatalf("unexpected sell error: %v", err)
	}
	if qty != 4 || account.Owns("AAPL") || account.Cash() != 1200 {
		t.Fatalf("unexpected state after SellAll: qty=%d owns=%v cash=%.2f", qty, account.Owns("AAPL"), account.Cash())
	}
}

func TestRecapitalizeReplacesCash(t *testing.T) {
	account := funded(t, 1000)
	if err := account.Buy("AAPL", 10, 10); err != nil {
		t.Fatalf("unexpected buy error: %v", err)
	}
	if err := account.Recapitalize(50); err != nil {
		t.Fatalf("Recapitalize returned error: %v", err)
	}
	if account.Cash() != 50 || account.Position("AAPL") != 10 {
		t.Fatalf("expected cash 50 and untouched position, got %.2f/%d", account.Cash(), account.Position("AAPL"))
	}
	if err := account.Recapitalize(-1); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestValueRequiresPriceForHeldTickers(t *testing.T) {
	account := funded(t, 1000)
	if err := account.Buy("AAPL", 100, 2); err != nil {
		t.Fatalf("unexpected buy error: %v", err)
	}
	if _, err := account.Value(map[string]float64{"MSFT": 1}); !errors.Is(err, ErrMissingPrice) {
		t.Fatalf("expected ErrMissingPrice, got %v", err)
	}
	value, err := account.Value(map[string]float64{"AAPL": 110})
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}
	if value != 1020 {
		t.Fatalf("expected 1020, got %.2f", value)
	}
}

func TestSummaryBalances(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	account := funded(t, 10_000)
	tickers := []string{"AAPL", "MSFT", "IBM"}
	prices := map[string]float64{}

	for i := 0; i < 200; i++ {
		ticker := tickers[rng.Intn(len(tickers))]
		px := 1 + rng.Float64()*200
		prices[ticker] = px
		if rng.Intn(2) == 0 {
			_ = account.Buy(ticker, px, int64(1+rng.Intn(20)))
		} else {
			_ = account.Sell(ticker, px, int64(1+rng.Intn(20)))
		}

		summary, err := account.Summary(prices)
		if err != nil {
			t.Fatalf("Summary returned error: %v", err)
		}
		if summary.Cash < 0 {
			t.Fatalf("cash went negative: %.2f", summary.Cash)
		}
		held := make([]string, 0, len(summary.Positions))
		for ticker, qty := range summary.Positions {
			if qty <= 0 {
				t.Fatalf("non-positive quantity stored for %s", ticker)
			}
			held = append(held, ticker)
		}
		sort.Strings(held)
		want := summary.Cash
		for _, ticker := range held {
			want += float64(summary.Positions[ticker]) * prices[ticker]
		}
		if want != summary.TotalValue {
			t.Fatalf("step %d: cash+holdings %.10f != total %.10f", i, want, summary.TotalValue)
		}
	}
}

func TestInvalidOrders(t *testing.T) {
	account := funded(t, 1000)
	if err := account.Buy("AAPL", 0, 1); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for zero price, got %v", err)
	}
	if err := account.Buy("AAPL", 10, 0); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for zero quantity, got %v", err)
	}
	if _, err := account.BuyWithEntireCash("", 10); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for empty ticker, got %v", err)
	}
}
