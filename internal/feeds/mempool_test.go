package feeds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ernest-money/ernest-oracle/internal/parlay"
)

func newMockServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/mining/hashrate/3m", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"currentHashrate": 2.520332473552123e18,
			"currentDifficulty": 9.0e13
		}`))
	})
	mux.HandleFunc("/mining/blocks/fees/3m", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"avgHeight": 850000, "timestamp": 1718000000, "avgFees": 20000000},
			{"avgHeight": 850100, "timestamp": 1718060000, "avgFees": 30000000}
		]`))
	})
	mux.HandleFunc("/mining/blocks/fee-rates/3m", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"avgHeight": 850000, "timestamp": 1718000000, "avgFee_90": 12.5},
			{"avgHeight": 850100, "timestamp": 1718060000, "avgFee_90": 17.5}
		]`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestGetHashrate(t *testing.T) {
	server := newMockServer(t)
	client := NewClient(server.URL)

	hashrate, err := client.GetHashrate(context.Background(), PeriodThreeMonths)
	if err != nil {
		t.Fatalf("failed to fetch hashrate: %v", err)
	}
	expected := 2.520332473552123e18 / 1e18
	if hashrate != expected {
		t.Fatalf("expected %v EH/s, got %v", expected, hashrate)
	}
}

func TestGetDifficulty(t *testing.T) {
	server := newMockServer(t)
	client := NewClient(server.URL)

	difficulty, err := client.GetDifficulty(context.Background(), PeriodThreeMonths)
	if err != nil {
		t.Fatalf("failed to fetch difficulty: %v", err)
	}
	if difficulty != 90.0 {
		t.Fatalf("expected 90, got %v", difficulty)
	}
}

func TestGetBlockFeesAverages(t *testing.T) {
	server := newMockServer(t)
	client := NewClient(server.URL)

	fees, err := client.GetBlockFees(context.Background(), PeriodThreeMonths)
	if err != nil {
		t.Fatalf("failed to fetch block fees: %v", err)
	}
	if fees != 25000000 {
		t.Fatalf("expected 25000000, got %v", fees)
	}
}

func TestGetFeeRateAverages(t *testing.T) {
	server := newMockServer(t)
	client := NewClient(server.URL)

	feeRate, err := client.GetFeeRate(context.Background(), PeriodThreeMonths)
	if err != nil {
		t.Fatalf("failed to fetch fee rate: %v", err)
	}
	if feeRate != 15.0 {
		t.Fatalf("expected 15, got %v", feeRate)
	}
}

func TestValueForDispatch(t *testing.T) {
	server := newMockServer(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	cases := []struct {
		dataType parlay.DataType
		expected float64
	}{
		{parlay.DataTypeHashrate, 2.520332473552123},
		{parlay.DataTypeDifficulty, 90.0},
		{parlay.DataTypeBlockFees, 25000000},
		{parlay.DataTypeFeeRate, 15.0},
	}
	for _, tc := range cases {
		got, err := client.ValueFor(ctx, tc.dataType)
		if err != nil {
			t.Fatalf("failed to fetch %s: %v", tc.dataType, err)
		}
		if got != tc.expected {
			t.Fatalf("%s: expected %v, got %v", tc.dataType, tc.expected, got)
		}
	}

	if _, err := client.ValueFor(ctx, parlay.DataType("mempoolSize")); !errors.Is(err, parlay.ErrUnsupportedDataType) {
		t.Fatalf("expected ErrUnsupportedDataType, got %v", err)
	}
}

func TestGetRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.GetHashrate(context.Background(), PeriodThreeMonths); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestNewClientDefaultsBaseURL(t *testing.T) {
	client := NewClient("")
	if client.baseURL != DefaultBaseURL {
		t.Fatalf("expected default base URL, got %q", client.baseURL)
	}
}
