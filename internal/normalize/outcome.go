package normalize

import (
	"math"
	"sort"
	"strconv"

	"github.com/pulsepoly/pulsepoly/internal/models"
)

// unknownOutcomeName is the terminal fallback of the name resolution chain.
const unknownOutcomeName = "Unknown"

// outcomeName resolves a sub-market's display name. First non-empty wins:
// group title, question, title, nested metadata title, name, nested metadata
// question, the market's own outcomes list, then the event-level outcomes
// list at the same index, then "Unknown".
func outcomeName(m *RawMarket, eventOutcomes []string, idx int) string {
	candidates := []string{
		m.GroupItemTitle,
		m.Question,
		m.Title,
	}
	if m.Metadata != nil {
		candidates = append(candidates, m.Metadata.Title)
	}
	candidates = append(candidates, m.Name)
	if m.Metadata != nil {
		candidates = append(candidates, m.Metadata.Question)
	}
	if len(m.Outcomes) > 0 {
		candidates = append(candidates, m.Outcomes[0])
	}
	if idx < len(eventOutcomes) {
		candidates = append(candidates, eventOutcomes[idx])
	}
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return unknownOutcomeName
}

// ExtractOutcomes builds the ordered outcome list for a raw event: one
// outcome per sub-market, or one per name when the event only carries a flat
// outcomes list. The result is ranked by descending percent; ties keep the
// upstream order.
func ExtractOutcomes(e *RawEvent) []models.Outcome {
	outcomes := fromMarkets(e)
	if outcomes == nil {
		outcomes = fromFlatList(e)
	}
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Percent > outcomes[j].Percent
	})
	return outcomes
}

func fromMarkets(e *RawEvent) []models.Outcome {
	if len(e.Markets) == 0 {
		return nil
	}
	outcomes := make([]models.Outcome, 0, len(e.Markets))
	for i := range e.Markets {
		m := &e.Markets[i]
		// Aggregator sub-markets carry a status; anything not open is
		// already resolved or halted and stays off the card.
		if m.Status != "" && m.Status != "open" {
			continue
		}
		pp := marketPricePoint(m)
		yes := clamp01(pp.Price)
		outcomes = append(outcomes, models.Outcome{
			Name:     outcomeName(m, e.Outcomes, i),
			Percent:  pp.Percent,
			YesPrice: yes,
			NoPrice:  1 - yes,
			MarketID: marketIdentifier(m),
		})
	}
	return outcomes
}

// fromFlatList distributes percent over a bare outcomes list: a parallel
// event-level price list supplies per-outcome values, otherwise the split is
// equal.
func fromFlatList(e *RawEvent) []models.Outcome {
	if len(e.Outcomes) == 0 {
		return nil
	}
	equal := int(math.Round(100 / float64(len(e.Outcomes))))
	outcomes := make([]models.Outcome, 0, len(e.Outcomes))
	for i, name := range e.Outcomes {
		if name == "" {
			name = unknownOutcomeName
		}
		percent := equal
		price := float64(equal) / 100
		if i < len(e.OutcomePrices) {
			if raw, err := strconv.ParseFloat(e.OutcomePrices[i], 64); err == nil {
				pp := fromRaw(raw)
				percent, price = pp.Percent, clamp01(pp.Price)
			}
		}
		outcomes = append(outcomes, models.Outcome{
			Name:     name,
			Percent:  percent,
			YesPrice: price,
			NoPrice:  1 - price,
		})
	}
	return outcomes
}

func marketIdentifier(m *RawMarket) string {
	if m.MarketID != "" {
		return string(m.MarketID)
	}
	return string(m.ID)
}
