package series

import (
	"errors"
	"math"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func sample() *Series {
	return New("AAPL", []Bar{
		{Time: day(0), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{Time: day(1), Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 20},
		{Time: day(2), Open: 2, High: 3, Low: 1.5, Close: 2.5, Volume: 30},
	})
}

func TestFieldResolvesOHLCVAndColumns(t *testing.T) {
	s := sample()
	closes, err := s.Field(FieldClose)
	if err != nil {
		t.Fatalf("Field returned error: %v", err)
	}
	if closes[2] != 2.5 {
		t.Fatalf("unexpected close %v", closes[2])
	}
	if err := s.AddColumn("X", []float64{math.NaN(), 1, 2}); err != nil {
		t.Fatalf("AddColumn returned error: %v", err)
	}
	x, err := s.Field("X")
	if err != nil || x[1] != 1 {
		t.Fatalf("expected column X, got %v err=%v", x, err)
	}
	if _, err := s.Field("Nope"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestAddColumnLengthMismatch(t *testing.T) {
	s := sample()
	if err := s.AddColumn("bad", []float64{1}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if len(s.Columns()) != 0 {
		t.Fatalf("rejected column must not be stored")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := sample()
	_ = s.AddColumn("X", []float64{1, 2, 3})
	cp := s.Clone()
	cp.Bars[0].Close = 99
	col, _ := cp.Column("X")
	col[0] = 42

	if s.Bars[0].Close != 1.5 {
		t.Fatalf("clone aliased bars")
	}
	orig, _ := s.Column("X")
	if orig[0] != 1 {
		t.Fatalf("clone aliased columns")
	}
}

func TestValidate(t *testing.T) {
	if err := sample().Validate(); err != nil {
		t.Fatalf("expected valid series, got %v", err)
	}

	empty := New("X", nil)
	if err := empty.Validate(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}

	dup := sample()
	dup.Bars[2].Time = dup.Bars[1].Time
	if err := dup.Validate(); !errors.Is(err, ErrUnordered) {
		t.Fatalf("expected ErrUnordered, got %v", err)
	}

	nan := sample()
	nan.Bars[1].High = math.NaN()
	if err := nan.Validate(); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}

	neg := sample()
	neg.Bars[0].Volume = -1
	if err := neg.Validate(); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite for negative volume, got %v", err)
	}
}

func TestColumnsSorted(t *testing.T) {
	s := sample()
	_ = s.AddColumn("b", []float64{1, 2, 3})
	_ = s.AddColumn("a", []float64{1, 2, 3})
	cols := s.Columns()
	if len(cols) != 2 || cols[0] != "a" || cols[1] != "b" {
		t.Fatalf("unexpected columns %v", cols)
	}
}
