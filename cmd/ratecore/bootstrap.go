package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/meenmo/ratecore/calendar"
	"github.com/meenmo/ratecore/curve"
	"github.com/meenmo/ratecore/instruments"
	"github.com/meenmo/ratecore/utils"
)

// BootstrapInput defines the JSON input schema of one curve.
type BootstrapInput struct {
	TaskID string `json:"task_id,omitempty"`

	BaseDate    string   `json:"base_date"`
	SpotLagDays int      `json:"spot_lag_days"`
	Calendar    string   `json:"calendar,omitempty"`
	Holidays    []string `json:"holidays,omitempty"`
	// Interpolation overrides the configured method of the final curve.
	Interpolation string            `json:"interpolation,omitempty"`
	Instruments   []InstrumentInput `json:"instruments"`
}

// InstrumentInput describes one calibrating instrument. Quote is a rate for
// deposits and swaps (0.05 is 5%) and a price for futures.
type InstrumentInput struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Start     string          `json:"start,omitempty"`
	Tenor     string          `json:"tenor"`
	Quote     decimal.Decimal `json:"quote"`
	Convexity float64         `json:"convexity,omitempty"`
	DayCount  string          `json:"day_count,omitempty"`
	// Leg selects the swap fixed leg preset: EUR (default) or USD.
	Leg string `json:"leg,omitempty"`
	// Frequency overrides the fixed leg payment tenor, e.g. "6M".
	Frequency string `json:"frequency,omitempty"`
}

// BootstrapOutput defines the JSON output schema.
type BootstrapOutput struct {
	TaskID     string            `json:"task_id,omitempty"`
	SpotDate   string            `json:"spot_date,omitempty"`
	TermPoints []TermPointOutput `json:"term_points,omitempty"`
	Error      string            `json:"error,omitempty"`
}

type TermPointOutput struct {
	ID             string          `json:"id"`
	Date           string          `json:"date"`
	DiscountFactor decimal.Decimal `json:"discount_factor"`
}

var errInputFailed = errors.New("one or more inputs failed")

func newBootstrapCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Bootstrap discount curves from JSON instrument quotes",
		Long: `Read one curve definition (or a JSON array of them) from --input or stdin,
bootstrap each and write the term points as JSON to stdout.

Example input:
  {
    "base_date": "2025-01-15",
    "spot_lag_days": 2,
    "calendar": "TARGET",
    "instruments": [
      {"type": "deposit", "tenor": "3M", "quote": 0.0295},
      {"type": "future", "start": "2025-06-18", "tenor": "3M", "quote": 97.1},
      {"type": "swap", "tenor": "5Y", "quote": 0.0265}
    ]
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath, _ := cmd.Flags().GetString("input")
			raw, err := readInput(strings.TrimSpace(inputPath), cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			inputs, isArray, err := parseInputs(raw)
			if err != nil {
				return fmt.Errorf("failed to parse JSON input: %w", err)
			}

			hadError := false
			outputs := make([]BootstrapOutput, 0, len(inputs))
			for _, in := range inputs {
				out, err := runBootstrap(a, in)
				if err != nil {
					hadError = true
					a.log.Error().Err(err).Str("task_id", in.TaskID).Msg("bootstrap failed")
					outputs = append(outputs, BootstrapOutput{TaskID: in.TaskID, Error: err.Error()})
					continue
				}
				outputs = append(outputs, *out)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if isArray {
				err = enc.Encode(outputs)
			} else {
				err = enc.Encode(outputs[0])
			}
			if err != nil {
				return err
			}
			if hadError {
				return errInputFailed
			}
			return nil
		},
	}
	cmd.Flags().String("input", "", "JSON input path (reads stdin when empty)")
	return cmd
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(stdin)
}

func parseInputs(raw []byte) ([]BootstrapInput, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, errors.New("empty input")
	}

	if trimmed[0] == '[' {
		var inputs []BootstrapInput
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, errors.New("empty input array")
		}
		return inputs, true, nil
	}

	var input BootstrapInput
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, false, err
	}
	return []BootstrapInput{input}, false, nil
}

func runBootstrap(a *app, in BootstrapInput) (*BootstrapOutput, error) {
	base, err := utils.ParseDate(in.BaseDate)
	if err != nil {
		return nil, fmt.Errorf("base_date: %w", err)
	}
	if in.SpotLagDays < 0 {
		return nil, fmt.Errorf("spot_lag_days must not be negative, got %d", in.SpotLagDays)
	}
	cal, err := buildCalendar(in.Calendar, in.Holidays)
	if err != nil {
		return nil, err
	}
	spot := cal.AddBusinessDays(base, in.SpotLagDays)

	assets := make([]instruments.Asset, 0, len(in.Instruments))
	for i, inst := range in.Instruments {
		asset, err := buildAsset(inst, spot, cal)
		if err != nil {
			return nil, fmt.Errorf("instruments[%d]: %w", i, err)
		}
		assets = append(assets, asset)
	}

	cfg := a.cfg.Bootstrap
	if in.Interpolation != "" {
		cfg.Interpolation = in.Interpolation
	}
	b, err := curve.NewBootstrapper(cfg, curve.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	points, err := b.Bootstrap(base, assets)
	if err != nil {
		return nil, err
	}

	out := &BootstrapOutput{
		TaskID:     in.TaskID,
		SpotDate:   spot.Format(utils.DateLayout),
		TermPoints: make([]TermPointOutput, len(points)),
	}
	for i, p := range points {
		out.TermPoints[i] = TermPointOutput{ID: p.ID, Date: p.Date.Format(utils.DateLayout), DiscountFactor: p.DiscountFactor}
	}
	return out, nil
}

func buildCalendar(name string, holidays []string) (*calendar.Calendar, error) {
	id, err := calendar.ParseID(name)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, len(holidays))
	for i, h := range holidays {
		if dates[i], err = utils.ParseDate(h); err != nil {
			return nil, fmt.Errorf("holidays[%d]: %w", i, err)
		}
	}
	return calendar.New(id, dates...), nil
}

func buildAsset(in InstrumentInput, spot time.Time, cal *calendar.Calendar) (instruments.Asset, error) {
	tenor, err := utils.ParseTenor(in.Tenor)
	if err != nil {
		return nil, err
	}
	id := in.ID
	if id == "" {
		id = strings.ToUpper(in.Type) + tenor.String()
	}
	start := spot
	if in.Start != "" {
		if start, err = utils.ParseDate(in.Start); err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
	}
	dc := utils.Act360
	if in.DayCount != "" {
		if dc, err = utils.ParseDayCount(in.DayCount); err != nil {
			return nil, err
		}
	}

	switch strings.ToLower(in.Type) {
	case "deposit":
		return instruments.NewDeposit(id, start, cal.Adjust(tenor.AddTo(start)), in.Quote, dc)
	case "future":
		if in.Start == "" {
			return nil, fmt.Errorf("future %s needs a start date", id)
		}
		return instruments.NewRateFuture(id, start, cal.Adjust(tenor.AddTo(start)), in.Quote, in.Convexity, dc)
	case "swap":
		leg, err := fixedLeg(in.Leg)
		if err != nil {
			return nil, err
		}
		if in.DayCount != "" {
			leg.DayCount = dc
		}
		if in.Frequency != "" {
			pay, err := utils.ParseTenor(in.Frequency)
			if err != nil {
				return nil, fmt.Errorf("frequency: %w", err)
			}
			if leg.PayFrequency, err = instruments.FrequencyFromTenor(pay); err != nil {
				return nil, err
			}
		}
		return instruments.NewSwap(id, start, tenor.AddTo(start), in.Quote, leg.WithCalendar(cal))
	default:
		return nil, fmt.Errorf("unknown instrument type %q", in.Type)
	}
}

func fixedLeg(name string) (instruments.LegConvention, error) {
	switch strings.ToUpper(name) {
	case "", "EUR":
		return instruments.EURFixedAnnual, nil
	case "USD":
		return instruments.USDFixedAnnual, nil
	default:
		return instruments.LegConvention{}, fmt.Errorf("unknown fixed leg %q", name)
	}
}
