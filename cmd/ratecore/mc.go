package main

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/meenmo/ratecore/montecarlo"
)

// MCOutput defines the JSON output schema of the mc commands.
type MCOutput struct {
	Value    float64 `json:"value"`
	StdError float64 `json:"std_error"`
	Paths    int     `json:"paths"`
}

func newMCCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mc",
		Short: "Price options by Monte Carlo under lognormal dynamics",
	}
	cmd.PersistentFlags().Float64("rate", 0, "continuously compounded risk-free rate")
	cmd.PersistentFlags().Float64("expiry", 1, "time to expiry in years")
	cmd.PersistentFlags().Int("steps", 1, "time steps per path")
	cmd.PersistentFlags().Int("paths", 0, "number of paths (default from config)")
	cmd.PersistentFlags().Int("workers", 0, "worker goroutines (default from config)")
	cmd.PersistentFlags().Uint64("seed", 0, "random seed (default from config)")
	cmd.PersistentFlags().Bool("antithetic", false, "antithetic variates (default from config)")

	cmd.AddCommand(newEuropeanCmd(a), newBasketCmd(a), newEverestCmd(a))
	return cmd
}

// mcSettings are the flags shared by every mc command, with config fallbacks.
type mcSettings struct {
	rate, expiry float64
	steps        int
	engine       montecarlo.Engine
	seed         uint64
	antithetic   bool
}

func (a *app) settings(cmd *cobra.Command) (mcSettings, error) {
	flags := cmd.Flags()
	s := mcSettings{
		seed:       a.cfg.MonteCarlo.Seed,
		antithetic: a.cfg.MonteCarlo.Antithetic,
		engine: montecarlo.Engine{
			Paths:   a.cfg.MonteCarlo.Paths,
			Workers: a.cfg.MonteCarlo.Workers,
			Logger:  &a.log,
		},
	}
	s.rate, _ = flags.GetFloat64("rate")
	s.expiry, _ = flags.GetFloat64("expiry")
	s.steps, _ = flags.GetInt("steps")
	if flags.Changed("paths") {
		s.engine.Paths, _ = flags.GetInt("paths")
	}
	if flags.Changed("workers") {
		s.engine.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("seed") {
		s.seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("antithetic") {
		s.antithetic, _ = flags.GetBool("antithetic")
	}
	if !(s.expiry > 0) {
		return s, fmt.Errorf("expiry must be positive, got %g", s.expiry)
	}
	if s.steps <= 0 {
		return s, fmt.Errorf("steps must be positive, got %d", s.steps)
	}
	return s, nil
}

// times is the uniform simulation grid.
func (s mcSettings) times() []float64 {
	times := make([]float64, s.steps)
	for i := range times {
		times[i] = s.expiry * float64(i+1) / float64(s.steps)
	}
	return times
}

func (s mcSettings) discount() float64 { return math.Exp(-s.rate * s.expiry) }

func (s mcSettings) price(cmd *cobra.Command, newGenerator montecarlo.GeneratorFactory, pricer montecarlo.PathPricer) error {
	res, err := s.engine.Price(cmd.Context(), newGenerator, pricer)
	if err != nil {
		return err
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(MCOutput{Value: res.Value, StdError: res.StdError, Paths: res.Paths})
}

func newEuropeanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "european",
		Short: "Price a European call or put",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings(cmd)
			if err != nil {
				return err
			}
			typ, _ := cmd.Flags().GetString("type")
			spot, _ := cmd.Flags().GetFloat64("spot")
			strike, _ := cmd.Flags().GetFloat64("strike")
			vol, _ := cmd.Flags().GetFloat64("vol")

			optionType, err := montecarlo.ParseOptionType(typ)
			if err != nil {
				return err
			}
			pricer, err := montecarlo.NewEuropeanPathPricer(optionType, spot, strike, s.discount(), s.antithetic)
			if err != nil {
				return err
			}
			newGenerator := func(chunk int) (montecarlo.Generator, error) {
				return montecarlo.NewPathGenerator(s.rate-vol*vol/2, vol*vol, s.expiry, s.steps, montecarlo.NewSource(s.seed, uint64(chunk)))
			}
			return s.price(cmd, newGenerator, pricer)
		},
	}
	cmd.Flags().String("type", "call", "call or put")
	cmd.Flags().Float64("spot", 100, "underlying price")
	cmd.Flags().Float64("strike", 100, "strike price")
	cmd.Flags().Float64("vol", 0.2, "lognormal volatility")
	return cmd
}

// multiAsset reads the flags shared by basket and everest: per-asset
// volatilities and one pairwise correlation.
func multiAsset(cmd *cobra.Command, s mcSettings) (drifts []float64, cov [][]float64, err error) {
	vols, _ := cmd.Flags().GetFloat64Slice("vols")
	rho, _ := cmd.Flags().GetFloat64("correlation")
	if len(vols) == 0 {
		return nil, nil, fmt.Errorf("at least one volatility is required")
	}
	if rho < -1 || rho > 1 {
		return nil, nil, fmt.Errorf("correlation must lie in [-1, 1], got %g", rho)
	}
	drifts = make([]float64, len(vols))
	cov = make([][]float64, len(vols))
	for i, vi := range vols {
		drifts[i] = s.rate - vi*vi/2
		cov[i] = make([]float64, len(vols))
		for j, vj := range vols {
			c := rho
			if i == j {
				c = 1
			}
			cov[i][j] = c * vi * vj
		}
	}
	return drifts, cov, nil
}

func multiGenerator(s mcSettings, drifts []float64, cov [][]float64) montecarlo.GeneratorFactory {
	return func(chunk int) (montecarlo.Generator, error) {
		return montecarlo.NewMultiPathGenerator(drifts, cov, s.times(), montecarlo.NewSource(s.seed, uint64(chunk)))
	}
}

func newBasketCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "basket",
		Short: "Price a weighted basket of lognormal assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings(cmd)
			if err != nil {
				return err
			}
			drifts, cov, err := multiAsset(cmd, s)
			if err != nil {
				return err
			}
			spots, _ := cmd.Flags().GetFloat64Slice("spots")
			weights, _ := cmd.Flags().GetFloat64Slice("weights")
			if len(spots) != len(drifts) || len(weights) != len(drifts) {
				return fmt.Errorf("got %d spots and %d weights for %d volatilities", len(spots), len(weights), len(drifts))
			}
			underlying := make([]float64, len(spots))
			for i := range spots {
				underlying[i] = weights[i] * spots[i]
			}
			pricer, err := montecarlo.NewBasketPathPricer(underlying, s.discount(), s.antithetic)
			if err != nil {
				return err
			}
			return s.price(cmd, multiGenerator(s, drifts, cov), pricer)
		},
	}
	cmd.Flags().Float64Slice("spots", nil, "underlying prices")
	cmd.Flags().Float64Slice("weights", nil, "basket weights")
	cmd.Flags().Float64Slice("vols", nil, "lognormal volatilities")
	cmd.Flags().Float64("correlation", 0, "pairwise correlation")
	return cmd
}

func newEverestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "everest",
		Short: "Price an Everest note paying the worst performer's growth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.settings(cmd)
			if err != nil {
				return err
			}
			drifts, cov, err := multiAsset(cmd, s)
			if err != nil {
				return err
			}
			pricer, err := montecarlo.NewEverestPathPricer(s.discount(), s.antithetic)
			if err != nil {
				return err
			}
			return s.price(cmd, multiGenerator(s, drifts, cov), pricer)
		},
	}
	cmd.Flags().Float64Slice("vols", nil, "lognormal volatilities")
	cmd.Flags().Float64("correlation", 0, "pairwise correlation")
	return cmd
}
