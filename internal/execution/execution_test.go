package execution

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestReportLogsFill(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	exec := NewExecutor(logger)
	exec.Report(Fill{Ticker: "AAPL", Side: Buy, Qty: 10, Price: 100, Time: time.Now()})

	out := buf.String()
	if !strings.Contains(out, "AAPL") || !strings.Contains(out, "BUY") || !strings.Contains(out, `"notional":1000`) {
		t.Fatalf("log does not contain fill details: %s", out)
	}
}

func TestNotional(t *testing.T) {
	f := Fill{Qty: 3, Price: 12.5}
	if f.Notional() != 37.5 {
		t.Fatalf("expected 37.5, got %v", f.Notional())
	}
}
