package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrPredictorContract marks a predictor response that violates the expected
// shape (non-2xx status, non-JSON body, or missing predictions). It fails
// only the triggering pipeline run; catalog and ledger state are untouched.
var ErrPredictorContract = errors.New("predictor contract violation")

type PredictorResult struct {
	Predictions json.RawMessage
	ChartData   json.RawMessage
}

// Client sends snapshot CSVs to the optimizer service and decodes the
// forecast it returns.
type Client struct {
	http *resty.Client
	url  string
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().SetTimeout(timeout),
		url:  url,
	}
}

type predictorEnvelope struct {
	Success     *bool           `json:"success"`
	Error       string          `json:"error"`
	Predictions json.RawMessage `json:"predictions"`
	ChartData   json.RawMessage `json:"chart_data"`
	Data        struct {
		Predictions json.RawMessage `json:"predictions"`
		ChartData   json.RawMessage `json:"chart_data"`
	} `json:"data"`
}

// Predict uploads the two CSV files and returns the decoded forecast. The
// optimizer nests its payload under "data"; older predictor builds return
// the arrays at the top level, and both shapes are accepted.
func (c *Client) Predict(ctx context.Context, salesPath, productsPath string) (*PredictorResult, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFile("sales", salesPath).
		SetFile("products", productsPath).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("send snapshot to predictor: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: predictor returned status %d", ErrPredictorContract, resp.StatusCode())
	}

	return decodePredictorBody(resp.Body())
}

func decodePredictorBody(body []byte) (*PredictorResult, error) {
	var env predictorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON from predictor: %v", ErrPredictorContract, err)
	}
	if env.Success != nil && !*env.Success {
		return nil, fmt.Errorf("%w: predictor reported failure: %s", ErrPredictorContract, env.Error)
	}

	predictions := env.Predictions
	chartData := env.ChartData
	if len(predictions) == 0 {
		predictions = env.Data.Predictions
		chartData = env.Data.ChartData
	}
	if len(predictions) == 0 {
		return nil, fmt.Errorf("%w: predictor did not return predictions", ErrPredictorContract)
	}
	if len(chartData) == 0 {
		chartData = json.RawMessage("[]")
	}

	return &PredictorResult{Predictions: predictions, ChartData: chartData}, nil
}
