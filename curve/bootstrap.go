package curve

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/meenmo/ratecore/config"
	"github.com/meenmo/ratecore/instruments"
	"github.com/meenmo/ratecore/interpolation"
	"github.com/meenmo/ratecore/solver"
	"github.com/meenmo/ratecore/utils"
)

// Bootstrapper solves discount factor nodes one asset at a time, each node
// repricing its asset given every earlier node. It holds no per-run state and
// is safe for concurrent use.
type Bootstrapper struct {
	cfg         config.BootstrapConfig
	method      interpolation.Method
	trialMethod interpolation.Method
	dayCount    utils.DayCount
	solverKind  solver.Kind
	reference   DiscountCurve
	log         zerolog.Logger
}

// Option customizes a Bootstrapper.
type Option func(*Bootstrapper)

// WithReference sets the curve that supplies initial guesses for
// spread-calibrated assets.
func WithReference(c DiscountCurve) Option {
	return func(b *Bootstrapper) { b.reference = c }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bootstrapper) { b.log = l }
}

// NewBootstrapper validates cfg and returns a Bootstrapper.
func NewBootstrapper(cfg config.BootstrapConfig, opts ...Option) (*Bootstrapper, error) {
	def := config.Default().Bootstrap
	if cfg.Interpolation == "" {
		cfg.Interpolation = def.Interpolation
	}
	if cfg.TrialInterpolation == "" {
		cfg.TrialInterpolation = def.TrialInterpolation
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.Accuracy <= 0 {
		cfg.Accuracy = def.Accuracy
	}
	if cfg.BracketLower == 0 && cfg.BracketUpper == 0 {
		cfg.BracketLower, cfg.BracketUpper = def.BracketLower, def.BracketUpper
	}
	if !(cfg.BracketLower > 0) || !(cfg.BracketUpper > cfg.BracketLower) {
		return nil, fmt.Errorf("curve: invalid bracket [%g, %g]", cfg.BracketLower, cfg.BracketUpper)
	}

	method, err := interpolation.ParseMethod(cfg.Interpolation)
	if err != nil {
		return nil, fmt.Errorf("curve: interpolation: %w", err)
	}
	trialMethod, err := interpolation.ParseMethod(cfg.TrialInterpolation)
	if err != nil {
		return nil, fmt.Errorf("curve: trial interpolation: %w", err)
	}
	dayCount := utils.Act365F
	if cfg.DayCount != "" {
		if dayCount, err = utils.ParseDayCount(cfg.DayCount); err != nil {
			return nil, fmt.Errorf("curve: %w", err)
		}
	}
	kind := solver.Kind(cfg.Solver)
	if _, err := solver.New(kind, cfg.MaxEvaluations); err != nil {
		return nil, fmt.Errorf("curve: %w", err)
	}

	b := &Bootstrapper{
		cfg:         cfg,
		method:      method,
		trialMethod: trialMethod,
		dayCount:    dayCount,
		solverKind:  kind,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Bootstrap returns the solved term points, one per distinct asset maturity.
func (b *Bootstrapper) Bootstrap(base time.Time, assets []instruments.Asset) ([]TermPoint, error) {
	_, points, err := b.BuildCurve(base, assets)
	return points, err
}

// BuildCurve bootstraps assets from base and returns the final curve, built
// with the configured interpolation, along with its term points. Nothing is
// returned on failure.
func (b *Bootstrapper) BuildCurve(base time.Time, assets []instruments.Asset) (*InterpolatedCurve, []TermPoint, error) {
	runID := uuid.New().String()
	log := b.log.With().Str("run_id", runID).Logger()
	log.Info().
		Time("base_date", base).
		Int("assets", len(assets)).
		Str("interpolation", string(b.method)).
		Msg("bootstrap started")

	nodes := []Node{{Date: base, DiscountFactor: 1}}
	ids := []string{""}
	trialOpts := Options{Method: b.trialMethod, Extrapolate: b.cfg.Extrapolate, DayCount: b.dayCount}

	for _, asset := range assets {
		maturity := asset.RiskMaturityDate()
		last := nodes[len(nodes)-1].Date
		switch {
		case !maturity.After(base):
			return nil, nil, fmt.Errorf("%w: %s matures %s, not after base date %s",
				ErrUnsortedAssets, asset.ID(), maturity.Format(utils.DateLayout), base.Format(utils.DateLayout))
		case maturity.Before(last):
			return nil, nil, fmt.Errorf("%w: %s matures %s, before %s",
				ErrUnsortedAssets, asset.ID(), maturity.Format(utils.DateLayout), last.Format(utils.DateLayout))
		case maturity.Equal(last):
			log.Debug().Str("asset", asset.ID()).Msg("node exists, skipped")
			continue
		}

		df, evaluations, err := b.solveNode(base, nodes, trialOpts, asset)
		if err != nil {
			log.Error().Err(err).Str("asset", asset.ID()).Msg("bootstrap failed")
			return nil, nil, err
		}
		if prev := nodes[len(nodes)-1].DiscountFactor; !b.cfg.AllowNegativeRates && df >= prev {
			return nil, nil, fmt.Errorf("%w: %s solved %g on %s, previous node %g",
				ErrNonMonotone, asset.ID(), df, maturity.Format(utils.DateLayout), prev)
		}

		nodes = append(nodes, Node{Date: maturity, DiscountFactor: df})
		ids = append(ids, asset.ID())
		log.Debug().
			Str("asset", asset.ID()).
			Time("maturity", maturity).
			Float64("discount_factor", df).
			Int("evaluations", evaluations).
			Msg("node solved")
	}

	c, err := NewInterpolatedCurve(base, nodes[1:], Options{Method: b.method, Extrapolate: b.cfg.Extrapolate, DayCount: b.dayCount})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: final curve: %w", ErrCalibration, err)
	}
	c.ids = ids
	points := c.TermPoints()
	log.Info().Int("nodes", len(points)).Msg("bootstrap finished")
	return c, points, nil
}

// solveNode returns the discount factor at asset's maturity and the number of
// objective evaluations spent by the solver, zero when the guess was accepted.
func (b *Bootstrapper) solveNode(base time.Time, nodes []Node, opts Options, asset instruments.Asset) (float64, int, error) {
	wrap := func(err error) error {
		return fmt.Errorf("%w: %s: %w", ErrCalibration, asset.ID(), err)
	}

	trial, err := NewInterpolatedCurve(base, nodes[1:], opts)
	if err != nil {
		return 0, 0, wrap(err)
	}
	guessCurve := instruments.Curve(trial)
	if asset.Kind() == instruments.SpreadCalibrated {
		if b.reference == nil {
			return 0, 0, fmt.Errorf("%w: %s", ErrMissingReference, asset.ID())
		}
		guessCurve = b.reference
	}

	obj := newQuoteObjective(asset, base, nodes, opts)
	guess, err := asset.DiscountFactorAtMaturity(guessCurve)
	if err != nil || !(guess > 0) || math.IsInf(guess, 0) {
		guess = nodes[len(nodes)-1].DiscountFactor
	} else {
		ok, err := obj.InitialValue(guess, b.cfg.Tolerance)
		if err != nil {
			return 0, 0, wrap(err)
		}
		if ok {
			return guess, 0, nil
		}
	}

	s, err := solver.New(b.solverKind, b.cfg.MaxEvaluations)
	if err != nil {
		return 0, 0, wrap(err)
	}
	guess = math.Min(math.Max(guess, b.cfg.BracketLower), b.cfg.BracketUpper)
	df, err := s.Solve(obj, b.cfg.Accuracy, guess, b.cfg.BracketLower, b.cfg.BracketUpper)
	if err != nil {
		if errors.Is(err, solver.ErrNaN) && obj.err != nil {
			err = fmt.Errorf("%w: %w", err, obj.err)
		}
		return 0, s.EvaluationNumber(), wrap(err)
	}
	if !(df > 0) {
		return 0, s.EvaluationNumber(), wrap(fmt.Errorf("%w: %g", instruments.ErrNonPositiveDiscountFactor, df))
	}
	return df, s.EvaluationNumber(), nil
}

// TermPoints returns the curve's nodes after the base date, discount factors
// as decimals.
func (c *InterpolatedCurve) TermPoints() []TermPoint {
	points := make([]TermPoint, 0, len(c.nodes)-1)
	for i, n := range c.nodes[1:] {
		var id string
		if i+1 < len(c.ids) {
			id = c.ids[i+1]
		}
		points = append(points, TermPoint{
			ID:             id,
			Date:           n.Date,
			DiscountFactor: decimal.NewFromFloat(n.DiscountFactor),
		})
	}
	return points
}
