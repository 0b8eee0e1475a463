package instruments_test

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/ratecore/instruments"
	"github.com/meenmo/ratecore/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var base = date(2025, 1, 15)

// flatCurve discounts at a continuously compounded rate, ACT/365F from base.
type flatCurve float64

func (r flatCurve) DiscountFactor(t time.Time) float64 {
	return math.Exp(-float64(r) * utils.YearFraction(base, t, utils.Act365F))
}

// pinned overrides one date of an underlying curve.
type pinned struct {
	instruments.Curve
	date time.Time
	df   float64
}

func (p pinned) DiscountFactor(t time.Time) float64 {
	if t.Equal(p.date) {
		return p.df
	}
	return p.Curve.DiscountFactor(t)
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "AnalyticDiscountable", instruments.AnalyticDiscountable.String())
	assert.Equal(t, "SpreadCalibrated", instruments.SpreadCalibrated.String())
	assert.Equal(t, "Kind(7)", instruments.Kind(7).String())
}

func TestDeposit(t *testing.T) {
	t.Parallel()

	mat := date(2025, 4, 15)
	dep, err := instruments.NewDeposit("3M", base, mat, decimal.RequireFromString("0.05"), utils.Act360)
	require.NoError(t, err)
	assert.Equal(t, instruments.AnalyticDiscountable, dep.Kind())
	assert.Equal(t, mat, dep.RiskMaturityDate())
	assert.Equal(t, base, dep.StartDate())
	assert.Equal(t, "3M", dep.ID())

	alpha := 90.0 / 360.0
	df, err := dep.DiscountFactorAtMaturity(flatCurve(0.03))
	require.NoError(t, err)
	assert.InDelta(t, 1/(1+0.05*alpha), df, 1e-15)

	implied, err := dep.ImpliedQuote(pinned{Curve: flatCurve(0.03), date: mat, df: df})
	require.NoError(t, err)
	assert.InDelta(t, 0.05, implied, 1e-14)

	bumped := dep.WithMarketQuote(decimal.RequireFromString("0.06"))
	assert.Equal(t, "0.06", bumped.MarketQuote().String())
	assert.Equal(t, "0.05", dep.MarketQuote().String())
	df2, err := bumped.DiscountFactorAtMaturity(flatCurve(0.03))
	require.NoError(t, err)
	assert.Less(t, df2, df)

	_, err = instruments.NewDeposit("bad", mat, base, decimal.Zero, utils.Act360)
	assert.ErrorIs(t, err, instruments.ErrInvalidDates)

	_, err = dep.DiscountFactorAtMaturity(nil)
	assert.ErrorIs(t, err, instruments.ErrNilCurve)
	_, err = dep.ImpliedQuote(pinned{Curve: flatCurve(0.03), date: mat, df: 0})
	assert.ErrorIs(t, err, instruments.ErrNonPositiveDiscountFactor)
}

func TestRateFuture(t *testing.T) {
	t.Parallel()

	start, end := date(2025, 3, 19), date(2025, 6, 18)
	fut, err := instruments.NewRateFuture("H5", start, end, decimal.RequireFromString("95.25"), 0.0005, utils.Act360)
	require.NoError(t, err)
	assert.InDelta(t, 0.0475-0.0005, fut.Forward(), 1e-15)
	assert.Equal(t, end, fut.RiskMaturityDate())

	c := flatCurve(0.04)
	df, err := fut.DiscountFactorAtMaturity(c)
	require.NoError(t, err)
	alpha := 91.0 / 360.0
	assert.InDelta(t, c.DiscountFactor(start)/(1+0.047*alpha), df, 1e-15)

	price, err := fut.ImpliedQuote(pinned{Curve: c, date: end, df: df})
	require.NoError(t, err)
	assert.InDelta(t, 95.25, price, 1e-11)
}

func TestSwapParRateAndGuessAreConsistent(t *testing.T) {
	t.Parallel()

	c := flatCurve(0.035)
	unquoted, err := instruments.NewSwap("5Y", base, date(2030, 1, 15), decimal.Zero, instruments.EURFixedAnnual)
	require.NoError(t, err)
	require.Len(t, unquoted.Periods(), 5)

	par, err := unquoted.ImpliedQuote(c)
	require.NoError(t, err)
	assert.InDelta(t, 0.0356, par, 5e-4)

	swap := unquoted.WithMarketQuote(decimal.NewFromFloat(par))
	df, err := swap.DiscountFactorAtMaturity(c)
	require.NoError(t, err)
	assert.InDelta(t, c.DiscountFactor(swap.RiskMaturityDate()), df, 1e-12)
}

func TestSwapPayDelay(t *testing.T) {
	t.Parallel()

	swap, err := instruments.NewSwap("2Y", base, date(2027, 1, 15), decimal.RequireFromString("0.04"), instruments.USDFixedAnnual)
	require.NoError(t, err)
	// Two business days after the Friday 15 January 2027 end date.
	assert.Equal(t, date(2027, 1, 19), swap.RiskMaturityDate())
}

func TestRateSpread(t *testing.T) {
	t.Parallel()

	ref := flatCurve(0.03)
	start, end := date(2025, 1, 17), date(2025, 7, 17)
	rs, err := instruments.NewRateSpread("6Mx", start, end, decimal.RequireFromString("0.0025"), utils.Act360, ref)
	require.NoError(t, err)
	assert.Equal(t, instruments.SpreadCalibrated, rs.Kind())

	df, err := rs.DiscountFactorAtMaturity(ref)
	require.NoError(t, err)
	implied, err := rs.ImpliedQuote(pinned{Curve: ref, date: end, df: df})
	require.NoError(t, err)
	assert.InDelta(t, 0.0025, implied, 1e-14)

	implied, err = rs.ImpliedQuote(ref)
	require.NoError(t, err)
	assert.InDelta(t, 0, implied, 1e-15)

	_, err = instruments.NewRateSpread("x", start, end, decimal.Zero, utils.Act360, nil)
	assert.ErrorIs(t, err, instruments.ErrNilCurve)
}

func TestBasisSwap(t *testing.T) {
	t.Parallel()

	ref := flatCurve(0.03)
	bs, err := instruments.NewBasisSwap("3s6s 2Y", base, date(2027, 1, 15), decimal.RequireFromString("0.0010"),
		instruments.EURIBOR3MFloat, instruments.EURIBOR6MFloat, ref)
	require.NoError(t, err)
	assert.Equal(t, instruments.SpreadCalibrated, bs.Kind())
	assert.Equal(t, date(2027, 1, 15), bs.RiskMaturityDate())

	// Identical projection and reference curves price at zero spread.
	implied, err := bs.ImpliedQuote(ref)
	require.NoError(t, err)
	assert.InDelta(t, 0, implied, 1e-14)

	// A projection curve 10bp above the reference prices close to 10bp.
	implied, err = bs.ImpliedQuote(flatCurve(0.031))
	require.NoError(t, err)
	assert.InDelta(t, 0.0010, implied, 5e-5)

	df, err := bs.DiscountFactorAtMaturity(ref)
	require.NoError(t, err)
	assert.Less(t, df, ref.DiscountFactor(bs.RiskMaturityDate()))

	_, err = instruments.NewBasisSwap("x", base, date(2027, 1, 15), decimal.Zero,
		instruments.EURIBOR3MFloat, instruments.EURIBOR6MFloat, nil)
	assert.ErrorIs(t, err, instruments.ErrNilCurve)
}

func TestGenerateSchedule(t *testing.T) {
	t.Parallel()

	t.Run("regular backward", func(t *testing.T) {
		t.Parallel()
		periods, err := instruments.GenerateSchedule(base, date(2027, 1, 15), instruments.EURFixedAnnual)
		require.NoError(t, err)
		require.Len(t, periods, 2)
		assert.Equal(t, date(2026, 1, 15), periods[0].EndDate)
		assert.Equal(t, date(2026, 1, 15), periods[1].StartDate)
		assert.Equal(t, date(2027, 1, 15), periods[1].PayDate)
		assert.InDelta(t, 1.0, periods[0].Accrual, 1e-15)
	})

	t.Run("front stub", func(t *testing.T) {
		t.Parallel()
		periods, err := instruments.GenerateSchedule(base, date(2026, 4, 15), instruments.EURIBOR6MFloat)
		require.NoError(t, err)
		require.Len(t, periods, 3)
		assert.Equal(t, date(2025, 4, 15), periods[0].EndDate)
		assert.Equal(t, date(2025, 10, 15), periods[1].EndDate)
	})

	t.Run("back stub", func(t *testing.T) {
		t.Parallel()
		leg := instruments.EURIBOR6MFloat
		leg.ScheduleDirection = instruments.ScheduleForward
		periods, err := instruments.GenerateSchedule(base, date(2026, 4, 15), leg)
		require.NoError(t, err)
		require.Len(t, periods, 3)
		assert.Equal(t, date(2025, 7, 15), periods[0].EndDate)
		assert.Equal(t, date(2026, 1, 15), periods[2].StartDate)
	})

	t.Run("short stub merged", func(t *testing.T) {
		t.Parallel()
		periods, err := instruments.GenerateSchedule(date(2025, 1, 10), date(2026, 1, 15), instruments.EURFixedAnnual)
		require.NoError(t, err)
		require.Len(t, periods, 1)
		assert.Equal(t, date(2025, 1, 10), periods[0].StartDate)
	})

	t.Run("month end roll", func(t *testing.T) {
		t.Parallel()
		periods, err := instruments.GenerateSchedule(date(2024, 2, 29), date(2025, 2, 28), instruments.EURIBOR3MFloat)
		require.NoError(t, err)
		require.Len(t, periods, 4)
		assert.Equal(t, date(2024, 5, 31), periods[0].EndDate)
		assert.Equal(t, date(2024, 8, 30), periods[1].EndDate)
		assert.Equal(t, date(2024, 11, 29), periods[2].EndDate)
	})

	t.Run("business month end roll", func(t *testing.T) {
		t.Parallel()
		// 2025-05-30 is the last business day of May; the 31st is a Saturday.
		periods, err := instruments.GenerateSchedule(date(2023, 5, 15), date(2025, 5, 30), instruments.EURFixedAnnual)
		require.NoError(t, err)
		require.Len(t, periods, 3)
		assert.Equal(t, date(2023, 5, 31), periods[0].EndDate)
		assert.Equal(t, date(2024, 5, 31), periods[1].EndDate)
		assert.Equal(t, date(2025, 5, 30), periods[2].EndDate)

		leg := instruments.EURFixedAnnual
		leg.RollConvention = instruments.RollEDATE
		periods, err = instruments.GenerateSchedule(date(2023, 5, 15), date(2025, 5, 30), leg)
		require.NoError(t, err)
		require.Len(t, periods, 3)
		assert.Equal(t, date(2024, 5, 30), periods[1].EndDate)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		_, err := instruments.GenerateSchedule(base, base, instruments.EURFixedAnnual)
		assert.Error(t, err)
		_, err = instruments.GenerateSchedule(base, date(2026, 1, 15), instruments.LegConvention{})
		assert.Error(t, err)
	})
}

func TestFrequencyFromTenor(t *testing.T) {
	t.Parallel()

	f, err := instruments.FrequencyFromTenor(utils.Tenor{N: 6, Unit: utils.Month})
	require.NoError(t, err)
	assert.Equal(t, instruments.FreqSemi, f)

	f, err = instruments.FrequencyFromTenor(utils.Tenor{N: 1, Unit: utils.Year})
	require.NoError(t, err)
	assert.Equal(t, instruments.FreqAnnual, f)

	_, err = instruments.FrequencyFromTenor(utils.Tenor{N: 1, Unit: utils.Week})
	assert.Error(t, err)
}
