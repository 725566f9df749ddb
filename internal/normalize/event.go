package normalize

import (
	"time"

	"github.com/pulsepoly/pulsepoly/internal/models"
)

// Event normalizes one raw record into the canonical event model. Records of
// unknown shape return ErrUnrecognizedShape; everything else always
// normalizes, with malformed fields degrading to documented defaults
// (50/50 outcomes, zero volume, nil dates) instead of failing the event.
func Event(data []byte) (*models.Event, error) {
	raw, shape, err := DecodeEvent(data)
	if err != nil {
		return nil, err
	}
	return EventFromRaw(raw, shape)
}

// EventFromRaw normalizes an already-decoded record.
func EventFromRaw(e *RawEvent, shape Shape) (*models.Event, error) {
	if shape == ShapeUnknown {
		return nil, ErrUnrecognizedShape
	}

	outcomes := ExtractOutcomes(e)

	marketCount := len(e.Markets)
	if marketCount == 0 {
		marketCount = len(e.Outcomes)
	}

	// Binary events drive a distinct two-bar display; the single outcome's
	// percent is the Yes side and No is always the complement.
	binaryYes := 0
	if marketCount == 1 {
		binaryYes = 50
		if len(outcomes) > 0 {
			binaryYes = outcomes[0].Percent
		}
	}

	volume, liquidity := aggregates(e, shape)
	active, closed := lifecycle(e)

	ev := &models.Event{
		ID:               identity(e),
		Slug:             slug(e),
		Title:            title(e),
		Description:      description(e),
		Image:            image(e),
		Volume:           volume,
		Liquidity:        liquidity,
		StartDate:        e.StartDate.ptr(),
		CreatedAt:        createdAt(e),
		EndDate:          endDate(e),
		Outcomes:         outcomes,
		MarketCount:      marketCount,
		BinaryYesPercent: binaryYes,
		Active:           active,
		Closed:           closed,
	}
	return ev, nil
}

func identity(e *RawEvent) string {
	if e.ID != "" {
		return string(e.ID)
	}
	if e.EventID != "" {
		return string(e.EventID)
	}
	return ""
}

func slug(e *RawEvent) string {
	if e.Slug != "" {
		return e.Slug
	}
	// The aggregator has no slug concept; its event id doubles as one.
	if e.EventID != "" {
		return string(e.EventID)
	}
	return e.Ticker
}

func title(e *RawEvent) string {
	if e.Question != "" {
		return e.Question
	}
	if e.Title != "" {
		return e.Title
	}
	if e.Metadata != nil {
		return e.Metadata.Title
	}
	return ""
}

func description(e *RawEvent) string {
	if e.Description != "" {
		return e.Description
	}
	if e.Metadata != nil {
		if e.Metadata.Subtitle != "" {
			return e.Metadata.Subtitle
		}
		if e.Metadata.Description != "" {
			return e.Metadata.Description
		}
	}
	return e.CloseCondition
}

func image(e *RawEvent) string {
	if e.Image != "" {
		return e.Image
	}
	if e.Icon != "" {
		return e.Icon
	}
	if e.Metadata != nil {
		if e.Metadata.Image != "" {
			return e.Metadata.Image
		}
		return e.Metadata.Icon
	}
	return ""
}

// aggregates resolves the volume and liquidity alias chains. The aggregator
// shape reports a single figure that conflates the two concepts, so it fills
// both.
func aggregates(e *RawEvent, shape Shape) (volume, liquidity float64) {
	if shape == ShapeAggregator {
		v := firstFloat(e.VolumeUsd, e.TvlDollars, e.Volume, e.TotalVolume)
		return v, v
	}
	volume = firstFloat(e.Volume, e.VolumeClob, e.VolumeUsd, e.TotalVolume)
	liquidity = firstFloat(e.Liquidity, e.LiquidityClob, e.LiquidityUsd, e.TotalLiquidity)
	return volume, liquidity
}

func firstFloat(fields ...*flexFloat) float64 {
	for _, f := range fields {
		if f != nil && f.Valid {
			if f.Value < 0 {
				return 0
			}
			return f.Value
		}
	}
	return 0
}

func createdAt(e *RawEvent) *time.Time {
	if t := e.CreatedAt.ptr(); t != nil {
		return t
	}
	return e.CreatedSnake.ptr()
}

func endDate(e *RawEvent) *time.Time {
	for _, f := range []*flexTime{e.EndDate, e.EndDateSnake, e.ClosesAt, e.BeginAt} {
		if t := f.ptr(); t != nil {
			return t
		}
	}
	return nil
}

func lifecycle(e *RawEvent) (active, closed bool) {
	if e.IsActive != nil {
		return *e.IsActive, !*e.IsActive
	}
	if e.Active != nil {
		active = *e.Active
	}
	if e.Closed != nil {
		closed = *e.Closed
	}
	return active, closed
}
