package montecarlo

import (
	"fmt"
	"math"
)

// PathPricer values one PathSample's paths, discounted.
type PathPricer interface {
	Value(paths []Path) (float64, error)
}

// OptionType is +1 for calls and -1 for puts.
type OptionType int

const (
	Call OptionType = 1
	Put  OptionType = -1
)

func (o OptionType) String() string {
	switch o {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return fmt.Sprintf("OptionType(%d)", int(o))
	}
}

// ParseOptionType maps "call" or "put" onto an OptionType.
func ParseOptionType(s string) (OptionType, error) {
	switch s {
	case "call", "Call", "C":
		return Call, nil
	case "put", "Put", "P":
		return Put, nil
	default:
		return 0, fmt.Errorf("%w: option type %q", ErrInvalidInput, s)
	}
}

func positive(name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s %g must be positive", ErrInvalidInput, name, v)
	}
	return nil
}

// antithetic averages payoff over the path and its mirror when enabled. The
// drift is shared, only the diffusion changes sign.
func antithetic(enabled bool, payoff func(sign float64) float64) float64 {
	if !enabled {
		return payoff(1)
	}
	return (payoff(1) + payoff(-1)) / 2
}

func checkPaths(paths []Path, want int) error {
	if len(paths) != want {
		return fmt.Errorf("%w: got %d paths, want %d", ErrPathMismatch, len(paths), want)
	}
	for i, p := range paths {
		if p.Len() == 0 || len(p.Drift) != p.Len() || len(p.Diffusion) != p.Len() {
			return fmt.Errorf("%w: path %d is empty or ragged", ErrPathMismatch, i)
		}
	}
	return nil
}

// EuropeanPathPricer pays max(phi*(S*exp(r) - K), 0) on the path's total
// log-return r.
type EuropeanPathPricer struct {
	optionType OptionType
	underlying float64
	strike     float64
	discount   float64
	antithetic bool
}

func NewEuropeanPathPricer(optionType OptionType, underlying, strike, discount float64, antithetic bool) (*EuropeanPathPricer, error) {
	if optionType != Call && optionType != Put {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, optionType)
	}
	for _, check := range []struct {
		name string
		v    float64
	}{{"underlying", underlying}, {"strike", strike}, {"discount", discount}} {
		if err := positive(check.name, check.v); err != nil {
			return nil, err
		}
	}
	return &EuropeanPathPricer{
		optionType: optionType,
		underlying: underlying,
		strike:     strike,
		discount:   discount,
		antithetic: antithetic,
	}, nil
}

func (p *EuropeanPathPricer) Value(paths []Path) (float64, error) {
	if err := checkPaths(paths, 1); err != nil {
		return 0, err
	}
	phi := float64(p.optionType)
	v := antithetic(p.antithetic, func(sign float64) float64 {
		return math.Max(phi*(p.underlying*math.Exp(paths[0].LogReturn(sign))-p.strike), 0)
	})
	return p.discount * v, nil
}

// BasketPathPricer pays sum_j underlying[j]*exp(r_j) over the assets' total
// log-returns.
type BasketPathPricer struct {
	underlying []float64
	discount   float64
	antithetic bool
}

func NewBasketPathPricer(underlying []float64, discount float64, antithetic bool) (*BasketPathPricer, error) {
	if len(underlying) == 0 {
		return nil, fmt.Errorf("%w: empty basket", ErrInvalidInput)
	}
	for i, u := range underlying {
		if err := positive(fmt.Sprintf("underlying[%d]", i), u); err != nil {
			return nil, err
		}
	}
	if err := positive("discount", discount); err != nil {
		return nil, err
	}
	return &BasketPathPricer{
		underlying: append([]float64(nil), underlying...),
		discount:   discount,
		antithetic: antithetic,
	}, nil
}

func (p *BasketPathPricer) Value(paths []Path) (float64, error) {
	if err := checkPaths(paths, len(p.underlying)); err != nil {
		return 0, err
	}
	v := antithetic(p.antithetic, func(sign float64) float64 {
		var sum float64
		for j, u := range p.underlying {
			sum += u * math.Exp(paths[j].LogReturn(sign))
		}
		return sum
	})
	return p.discount * v, nil
}

// EverestPathPricer pays exp(min_j r_j), the growth of the worst performer.
type EverestPathPricer struct {
	discount   float64
	antithetic bool
}

func NewEverestPathPricer(discount float64, antithetic bool) (*EverestPathPricer, error) {
	if err := positive("discount", discount); err != nil {
		return nil, err
	}
	return &EverestPathPricer{discount: discount, antithetic: antithetic}, nil
}

func (p *EverestPathPricer) Value(paths []Path) (float64, error) {
	if len(paths) == 0 {
		return 0, fmt.Errorf("%w: no paths", ErrPathMismatch)
	}
	if err := checkPaths(paths, len(paths)); err != nil {
		return 0, err
	}
	v := antithetic(p.antithetic, func(sign float64) float64 {
		worst := math.Inf(1)
		for _, path := range paths {
			worst = math.Min(worst, path.LogReturn(sign))
		}
		return math.Exp(worst)
	})
	return p.discount * v, nil
}
