package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrPredictorContract marks predictor output this service cannot honor:
// a failed process, a timeout, or undecodable stdout. Nothing is persisted
// for such a run.
var ErrPredictorContract = errors.New("predictor contract violation")

// PredictorConfig is passed through to the prediction script. Defaults
// mirror the script's documented values.
type PredictorConfig struct {
	LeadTimeDays          int     `json:"lead_time_days"`
	DiscountThresholdDays int     `json:"discount_threshold_days"`
	LossThreshold         float64 `json:"loss_threshold"`
}

func DefaultPredictorConfig() PredictorConfig {
	return PredictorConfig{
		LeadTimeDays:          7,
		DiscountThresholdDays: 5,
		LossThreshold:         0.2,
	}
}

type PredictorInput struct {
	Sales    []map[string]string `json:"sales"`
	Products []map[string]string `json:"products"`
	Config   PredictorConfig     `json:"config"`
}

type PredictorOutput struct {
	Predictions json.RawMessage `json:"predictions"`
	ChartData   json.RawMessage `json:"chart_data"`
}

// Runner invokes the external prediction script as a subprocess, feeding it
// JSON on stdin and reading the forecast JSON from stdout.
type Runner struct {
	Command string
	Args    []string
	Dir     string
}

func NewRunner(command string, args []string, dir string) *Runner {
	return &Runner{Command: command, Args: args, Dir: dir}
}

// Run executes the predictor under the caller's deadline. The process is
// killed when the context expires.
func (r *Runner) Run(ctx context.Context, input PredictorInput) (*PredictorOutput, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode predictor input: %w", err)
	}

	cmd := exec.CommandContext(ctx, r.Command, r.Args...)
	cmd.Dir = r.Dir
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: predictor timed out: %v", ErrPredictorContract, ctx.Err())
		}
		return nil, fmt.Errorf("%w: predictor process failed: %v, stderr: %s",
			ErrPredictorContract, err, strings.TrimSpace(stderr.String()))
	}

	// The script occasionally emits stray control bytes around its JSON.
	clean := sanitize(stdout.Bytes())

	var output PredictorOutput
	if err := json.Unmarshal(clean, &output); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON from predictor: %v", ErrPredictorContract, err)
	}
	if len(output.Predictions) == 0 {
		output.Predictions = json.RawMessage("[]")
	}
	if len(output.ChartData) == 0 {
		output.ChartData = json.RawMessage("[]")
	}
	return &output, nil
}

func sanitize(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c >= 0x20 && c <= 0x7E || c == '\n' || c == '\r' || c == '\t' {
			out = append(out, c)
		}
	}
	return out
}
