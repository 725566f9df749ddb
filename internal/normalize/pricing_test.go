package normalize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarketPricePoint_OutcomePrices(t *testing.T) {
	tests := []struct {
		name        string
		prices      flexStrings
		wantPercent int
		wantPrice   float64
	}{
		{name: "fractional probability", prices: flexStrings{"0.73", "0.27"}, wantPercent: 73, wantPrice: 0.73},
		{name: "percent-scale without decimal", prices: flexStrings{"73"}, wantPercent: 73, wantPrice: 0.73},
		{name: "exact one is a probability", prices: flexStrings{"1"}, wantPercent: 100, wantPrice: 1.0},
		{name: "zero", prices: flexStrings{"0"}, wantPercent: 0, wantPrice: 0},
		{name: "over one hundred clamps", prices: flexStrings{"250"}, wantPercent: 100, wantPrice: 2.5},
		{name: "unparseable falls to default", prices: flexStrings{"n/a"}, wantPercent: 50, wantPrice: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp := marketPricePoint(&RawMarket{OutcomePrices: tt.prices})
			assert.Equal(t, tt.wantPercent, pp.Percent)
			assert.InDelta(t, tt.wantPrice, pp.Price, 1e-9)
		})
	}
}

func TestMarketPricePoint_ScalarFields(t *testing.T) {
	f := func(v float64) *flexFloat { return &flexFloat{Value: v, Valid: true} }

	tests := []struct {
		name        string
		market      RawMarket
		wantPercent int
	}{
		{name: "price field", market: RawMarket{Price: f(0.42)}, wantPercent: 42},
		{name: "yesPrice field", market: RawMarket{YesPrice: f(0.9)}, wantPercent: 90},
		{name: "probability fraction", market: RawMarket{Probability: f(0.35)}, wantPercent: 35},
		{name: "probability already percent", market: RawMarket{Probability: f(35)}, wantPercent: 35},
		{name: "yesPercent is percent scale", market: RawMarket{YesPercent: f(64)}, wantPercent: 64},
		{name: "outcome prices win over scalar", market: RawMarket{OutcomePrices: flexStrings{"0.2"}, Price: f(0.9)}, wantPercent: 20},
		{name: "nothing at all", market: RawMarket{}, wantPercent: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp := marketPricePoint(&tt.market)
			assert.Equal(t, tt.wantPercent, pp.Percent)
		})
	}
}

func TestFromPricing(t *testing.T) {
	tests := []struct {
		name        string
		yes, no     string
		wantPercent int
		wantPrice   float64
	}{
		{name: "two thirds yes", yes: "0.2", no: "0.1", wantPercent: 67, wantPrice: 2.0 / 3.0},
		{name: "even", yes: "0.5", no: "0.5", wantPercent: 50, wantPrice: 0.5},
		{name: "both zero degrades", yes: "0", no: "0", wantPercent: 50, wantPrice: 0.5},
		{name: "both negative degrades", yes: "-1", no: "-2", wantPercent: 50, wantPrice: 0.5},
		{name: "garbage degrades", yes: "abc", no: "", wantPercent: 50, wantPrice: 0.5},
		{name: "one-sided book", yes: "0.4", no: "0", wantPercent: 100, wantPrice: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp := fromPricing(&RawPricing{
				BuyYesPriceUsd: flexString(tt.yes),
				BuyNoPriceUsd:  flexString(tt.no),
			})
			assert.Equal(t, tt.wantPercent, pp.Percent)
			assert.InDelta(t, tt.wantPrice, pp.Price, 1e-6)
		})
	}
}

func TestFinish_SubPercentRecovery(t *testing.T) {
	// A price that is small but genuinely nonzero must not display as a
	// hard 0%.
	pp := finish(0, 0.008)
	assert.Equal(t, 1, pp.Percent)
	assert.InDelta(t, 0.008, pp.Price, 1e-9)

	// Vanishingly small prices legitimately round to zero.
	pp = finish(0, 0.002)
	assert.Equal(t, 0, pp.Percent)
}

func TestPricePoint_RangeInvariant(t *testing.T) {
	// Percent stays within [0,100] for a spread of raw inputs, and the
	// complementary price pair sums to 1.
	raws := []float64{-5, -0.1, 0, 0.004, 0.3, 0.5, 0.999, 1, 1.5, 73, 100, 1000}
	for _, raw := range raws {
		t.Run(fmt.Sprintf("raw=%v", raw), func(t *testing.T) {
			pp := fromRaw(raw)
			assert.GreaterOrEqual(t, pp.Percent, 0)
			assert.LessOrEqual(t, pp.Percent, 100)
			assert.InDelta(t, 1.0, pp.Price+(1-pp.Price), 1e-9)
		})
	}
}
