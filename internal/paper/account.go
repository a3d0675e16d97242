package paper

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/samber/lo"

	"stock-trader-go/internal/execution"
)

// FillRecorder captures paper fills for later inspection.
type FillRecorder interface {
	Record(execution.Fill)
}

var (
	// ErrInsufficientFunds is returned when a buy costs more than the available cash.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientHoldings is returned when selling a ticker that is not held in the requested size.
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	// ErrMissingPrice is returned when valuing a held ticker without a price.
	ErrMissingPrice = errors.New("missing price for held ticker")
	// ErrInvalidOrder is returned for non-positive prices or quantities.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrInvalidAmount is returned when recapitalizing with a negative or non-finite amount.
	ErrInvalidAmount = errors.New("invalid capital amount")
)

// Account tracks virtual cash and whole-share positions for one simulation run.
// Every operation either applies fully or leaves the account untouched.
type Account struct {
	mu        sync.Mutex
	cash      float64
	positions map[string]int64
}

// Summary is a point-in-time view of the account marked to the supplied prices.
type Summary struct {
	Positions  map[string]int64
	Cash       float64
	TotalValue float64
}

// NewAccount constructs an empty account with no cash.
func NewAccount() *Account {
	return &Account{positions: make(map[string]int64)}
}

// Recapitalize replaces the cash balance with amount. Positions are untouched.
func (a *Account) Recapitalize(amount float64) error {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("recapitalize %v: %w", amount, ErrInvalidAmount)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cash = amount
	return nil
}

// Buy debits price*qty and credits qty shares of ticker.
func (a *Account) Buy(ticker string, price float64, qty int64) error {
	if err := validateOrder(ticker, price, qty); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buyLocked(ticker, price, qty)
}

// BuyWithEntireCash buys as many whole shares as the cash allows and returns the quantity.
func (a *Account) BuyWithEntireCash(ticker string, price float64) (int64, error) {
	if err := validateOrder(ticker, price, 1); err != nil {
		return 0, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	qty := int64(math.Floor(a.cash / price))
	// guard against the quotient rounding up past what the cash covers
	for qty > 0 && price*float64(qty) > a.cash {
		qty--
	}
	if qty == 0 {
		return 0, fmt.Errorf("buy %s at %.2f with cash %.2f: %w", ticker, price, a.cash, ErrInsufficientFunds)
	}
	if err := a.buyLocked(ticker, price, qty); err != nil {
		return 0, err
	}
	return qty, nil
}

func (a *Account) buyLocked(ticker string, price float64, qty int64) error {
	cost := price * float64(qty)
	if cost > a.cash {
		return fmt.Errorf("buy %d %s at %.2f with cash %.2f: %w", qty, ticker, price, a.cash, ErrInsufficientFunds)
	}
	a.cash -= cost
	a.positions[ticker] += qty
	return nil
}

// Sell credits price*qty and debits qty shares, dropping the position at zero.
func (a *Account) Sell(ticker string, price float64, qty int64) error {
	if err := validateOrder(ticker, price, qty); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sellLocked(ticker, price, qty)
}

// SellAll liquidates the whole position in ticker and returns the quantity sold.
func (a *Account) SellAll(ticker string, price float64) (int64, error) {
	if err := validateOrder(ticker, price, 1); err != nil {
		return 0, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	held := a.positions[ticker]
	if held <= 0 {
		return 0, fmt.Errorf("sell all %s: %w", ticker, ErrInsufficientHoldings)
	}
	if err := a.sellLocked(ticker, price, held); err != nil {
		return 0, err
	}
	return held, nil
}

func (a *Account) sellLocked(ticker string, price float64, qty int64) error {
	held := a.positions[ticker]
	if held <= 0 || qty > held {
		return fmt.Errorf("sell %d %s holding %d: %w", qty, ticker, held, ErrInsufficientHoldings)
	}
	a.cash += price * float64(qty)
	if held == qty {
		delete(a.positions, ticker)
	} else {
		a.positions[ticker] = held - qty
	}
	return nil
}

// Value returns cash plus every position marked at prices, summed in ticker
// order. A held ticker with no entry in prices is an error rather than a zero
// contribution.
func (a *Account) Value(prices map[string]float64) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.valueLocked(prices)
}

func (a *Account) valueLocked(prices map[string]float64) (float64, error) {
	tickers := lo.Keys(a.positions)
	sort.Strings(tickers)
	total := a.cash
	for _, ticker := range tickers {
		px, ok := prices[ticker]
		if !ok {
			return 0, fmt.Errorf("value %s: %w", ticker, ErrMissingPrice)
		}
		total += float64(a.positions[ticker]) * px
	}
	return total, nil
}

// Summary snapshots positions, cash and total value under one lock.
func (a *Account) Summary(prices map[string]float64) (Summary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	total, err := a.valueLocked(prices)
	if err != nil {
		return Summary{}, err
	}
	positions := make(map[string]int64, len(a.positions))
	for ticker, qty := range a.positions {
		positions[ticker] = qty
	}
	return Summary{Positions: positions, Cash: a.cash, TotalValue: total}, nil
}

// Owns reports whether any shares of ticker are held.
func (a *Account) Owns(ticker string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.positions[ticker] > 0
}

// Cash reports the free cash balance.
func (a *Account) Cash() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cash
}

// Position returns the share count held for ticker.
func (a *Account) Position(ticker string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.positions[ticker]
}

func validateOrder(ticker string, price float64, qty int64) error {
	if ticker == "" {
		return fmt.Errorf("%w: empty ticker", ErrInvalidOrder)
	}
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidOrder)
	}
	if !(price > 0) || math.IsInf(price, 0) {
		return fmt.Errorf("%w: price must be positive", ErrInvalidOrder)
	}
	return nil
}
