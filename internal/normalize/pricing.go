package normalize

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// PricePoint is the canonical (percent, price) pair for one outcome.
// Percent is always within [0,100]; Price is the matching 0–1 Yes price.
type PricePoint struct {
	Percent int
	Price   float64
}

// defaultPricePoint is the documented degradation target for missing or
// malformed price data: an even 50/50 split.
func defaultPricePoint() PricePoint {
	return PricePoint{Percent: 50, Price: 0.5}
}

// fromRaw applies the >1-vs-≤1 disambiguation: values above 1 are treated as
// already percent-scale, values within [0,1] as probabilities.
func fromRaw(raw float64) PricePoint {
	if raw > 1 {
		percent := int(math.Round(raw))
		return finish(percent, float64(percent)/100)
	}
	percent := int(math.Round(raw * 100))
	return finish(percent, raw)
}

// fromPercentScale handles fields the source labels as percent already.
func fromPercentScale(raw float64) PricePoint {
	percent := int(math.Round(raw))
	return finish(percent, float64(percent)/100)
}

// fromPricing derives the price point from an aggregator buy-price pair.
// The values are decimal currency strings; since both sides share a scale,
// the ratio yes/(yes+no) is the implied probability directly. A pair where
// both sides are zero or negative degrades to 50/50.
func fromPricing(p *RawPricing) PricePoint {
	if p == nil {
		return defaultPricePoint()
	}
	buyYes, err := decimal.NewFromString(string(p.BuyYesPriceUsd))
	if err != nil {
		buyYes = decimal.Zero
	}
	buyNo, err := decimal.NewFromString(string(p.BuyNoPriceUsd))
	if err != nil {
		buyNo = decimal.Zero
	}

	total := buyYes.Add(buyNo)
	if total.Sign() <= 0 {
		return defaultPricePoint()
	}
	price, _ := buyYes.Div(total).Float64()
	percent := int(math.Round(price * 100))
	return finish(percent, price)
}

// finish clamps percent into [0,100] and recovers genuinely-nonzero
// sub-1% outcomes: a percent that rounded to 0 while the price is a small
// positive value is recomputed from the price rather than reported as a
// hard zero.
func finish(percent int, price float64) PricePoint {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if percent == 0 && price > 0 && price < 0.01 {
		if p := int(math.Round(price * 100)); p > 0 {
			percent = p
		}
	}
	return PricePoint{Percent: percent, Price: price}
}

// clamp01 bounds a price into [0,1] for the canonical outcome pair. The
// calculator itself keeps the raw price so callers can see what the upstream
// actually said.
func clamp01(price float64) float64 {
	if price < 0 {
		return 0
	}
	if price > 1 {
		return 1
	}
	return price
}

// marketPricePoint resolves one sub-market's price fields in priority order:
// outcome-price list, scalar price/yesPrice, probability, yesPercent, the
// aggregator pricing pair, and finally the 50/50 default. Malformed input
// never raises; it falls through to the next source.
func marketPricePoint(m *RawMarket) PricePoint {
	if len(m.OutcomePrices) > 0 {
		if raw, err := strconv.ParseFloat(m.OutcomePrices[0], 64); err == nil {
			return fromRaw(raw)
		}
	}
	if m.Price != nil && m.Price.Valid {
		return fromRaw(m.Price.Value)
	}
	if m.YesPrice != nil && m.YesPrice.Valid {
		return fromRaw(m.YesPrice.Value)
	}
	if m.Probability != nil && m.Probability.Valid {
		return fromRaw(m.Probability.Value)
	}
	if m.YesPercent != nil && m.YesPercent.Valid {
		return fromPercentScale(m.YesPercent.Value)
	}
	if m.Pricing != nil {
		return fromPricing(m.Pricing)
	}
	return defaultPricePoint()
}
