package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ernest-money/ernest-oracle/internal/parlay"
)

// DefaultBaseURL is the public mempool.space API.
const DefaultBaseURL = "https://mempool.space/api/v1"

// TimePeriod selects the averaging window for mining statistics.
type TimePeriod string

const (
	PeriodOneMonth    TimePeriod = "1m"
	PeriodThreeMonths TimePeriod = "3m"
	PeriodSixMonths   TimePeriod = "6m"
	PeriodOneYear     TimePeriod = "1y"
	PeriodTwoYears    TimePeriod = "2y"
	PeriodThreeYears  TimePeriod = "3y"
	PeriodAll         TimePeriod = ""
)

type hashrateResponse struct {
	CurrentHashrate   float64 `json:"currentHashrate"`
	CurrentDifficulty float64 `json:"currentDifficulty"`
}

type blockFees struct {
	AvgHeight int64 `json:"avgHeight"`
	Timestamp int64 `json:"timestamp"`
	AvgFees   int64 `json:"avgFees"`
}

type feeRate struct {
	AvgHeight int64   `json:"avgHeight"`
	Timestamp int64   `json:"timestamp"`
	AvgFee90  float64 `json:"avgFee_90"`
}

// Client fetches Bitcoin network statistics from a mempool.space style API.
type Client struct {
	client  *http.Client
	baseURL string
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}
}

// GetHashrate returns the current network hashrate scaled to EH/s.
func (c *Client) GetHashrate(ctx context.Context, period TimePeriod) (float64, error) {
	var data hashrateResponse
	if err := c.get(ctx, c.hashrateURL(period), &data); err != nil {
		return 0, err
	}
	return data.CurrentHashrate / 1e18, nil
}

// GetDifficulty returns the current difficulty scaled down by 1e12.
func (c *Client) GetDifficulty(ctx context.Context, period TimePeriod) (float64, error) {
	var data hashrateResponse
	if err := c.get(ctx, c.hashrateURL(period), &data); err != nil {
		return 0, err
	}
	return data.CurrentDifficulty / 1e12, nil
}

// GetBlockFees returns the average block fees over the period, in sats.
func (c *Client) GetBlockFees(ctx context.Context, period TimePeriod) (float64, error) {
	var data []blockFees
	url := fmt.Sprintf("%s/mining/blocks/fees/%s", c.baseURL, period)
	if err := c.get(ctx, url, &data); err != nil {
		return 0, err
	}
	return average(data, func(f blockFees) float64 { return float64(f.AvgFees) }), nil
}

// GetFeeRate returns the average 90th percentile fee rate over the period.
func (c *Client) GetFeeRate(ctx context.Context, period TimePeriod) (float64, error) {
	var data []feeRate
	url := fmt.Sprintf("%s/mining/blocks/fee-rates/%s", c.baseURL, period)
	if err := c.get(ctx, url, &data); err != nil {
		return 0, err
	}
	return average(data, func(f feeRate) float64 { return f.AvgFee90 }), nil
}

// ValueFor fetches the raw observation for a pipeline data type, using the
// three month window the oracle attests against.
func (c *Client) ValueFor(ctx context.Context, dataType parlay.DataType) (float64, error) {
	switch dataType {
	case parlay.DataTypeHashrate:
		return c.GetHashrate(ctx, PeriodThreeMonths)
	case parlay.DataTypeDifficulty:
		return c.GetDifficulty(ctx, PeriodThreeMonths)
	case parlay.DataTypeBlockFees:
		return c.GetBlockFees(ctx, PeriodThreeMonths)
	case parlay.DataTypeFeeRate:
		return c.GetFeeRate(ctx, PeriodThreeMonths)
	default:
		return 0, fmt.Errorf("%w: %q", parlay.ErrUnsupportedDataType, dataType)
	}
}

func (c *Client) hashrateURL(period TimePeriod) string {
	if period == PeriodAll {
		return fmt.Sprintf("%s/mining/hashrate", c.baseURL)
	}
	return fmt.Sprintf("%s/mining/hashrate/%s", c.baseURL, period)
}

func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feeds: unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func average[T any](data []T, extract func(T) float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var total float64
	for _, item := range data {
		total += extract(item)
	}
	return total / float64(len(data))
}
