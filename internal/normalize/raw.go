// Package normalize converts heterogeneous upstream event JSON into the
// canonical models.Event representation. Two upstream shapes are supported:
//
//   - market-style: the Gamma REST API, where events carry sub-markets with
//     outcomes/outcomePrices fields that arrive either as arrays or as
//     JSON-encoded strings, plus a handful of aliased scalar price fields.
//   - aggregator-style: the Jupiter aggregator, where each sub-market carries
//     buyYesPriceUsd/buyNoPriceUsd decimal currency strings and a status flag.
//
// Shape decoding is an explicit tagged union: a record is classified as one
// of the two shapes or rejected with ErrUnrecognizedShape. All string-encoded
// nested JSON is decoded once here, at the ingestion boundary; fields that
// fail to parse read as absent downstream. Every function in this package is
// pure: same input bytes, same output, no I/O.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"
)

var (
	// ErrUnrecognizedShape is returned for records that match neither
	// upstream shape.
	ErrUnrecognizedShape = errors.New("unrecognized event shape")

	// ErrUnrecognizedPayload is returned when a listing response body holds
	// no array of records under any known key.
	ErrUnrecognizedPayload = errors.New("unrecognized listing payload")
)

// Shape tags the upstream origin of a raw event record.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeMarket
	ShapeAggregator
)

func (s Shape) String() string {
	switch s {
	case ShapeMarket:
		return "market"
	case ShapeAggregator:
		return "aggregator"
	default:
		return "unknown"
	}
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	// Unparseable values read as absent rather than failing the record.
	*f = ""
	return nil
}

// flexFloat decodes a JSON number or numeric string. Non-numeric input reads
// as absent (the field pointer stays nil at the call sites that matter, and
// a zero value otherwise).
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.Value, f.Valid = n, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			f.Value, f.Valid = v, true
		}
		return nil
	}
	return nil
}

// flexStrings decodes a JSON array of strings/numbers, or a JSON string that
// itself encodes such an array. A string that does not parse as an array
// reads as absent (nil), never as an error.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var items []flexString
	if err := json.Unmarshal(data, &items); err == nil {
		*f = make([]string, len(items))
		for i, it := range items {
			(*f)[i] = string(it)
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s != "" {
		var inner []flexString
		if err := json.Unmarshal([]byte(s), &inner); err == nil {
			*f = make([]string, len(inner))
			for i, it := range inner {
				(*f)[i] = string(it)
			}
		}
	}
	return nil
}

// flexTime decodes a timestamp from the formats the upstreams actually emit.
// Unparseable values read as absent.
type flexTime struct {
	Time  time.Time
	Valid bool
}

var timeFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04:05+00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		return nil
	}
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			f.Time, f.Valid = t, true
			return nil
		}
	}
	return nil
}

func (f *flexTime) ptr() *time.Time {
	if f == nil || !f.Valid {
		return nil
	}
	t := f.Time
	return &t
}

// RawMetadata is the nested metadata block used by the aggregator shape and
// occasionally present on market-style sub-markets.
type RawMetadata struct {
	Title       string `json:"title"`
	Question    string `json:"question"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Icon        string `json:"icon"`
}

// RawPricing is the aggregator-shape currency price pair. Values are decimal
// strings in USD.
type RawPricing struct {
	BuyYesPriceUsd flexString `json:"buyYesPriceUsd"`
	BuyNoPriceUsd  flexString `json:"buyNoPriceUsd"`
}

// RawMarket is the superset of both shapes' sub-market records. Field names
// are matched case-insensitively by encoding/json, which also covers the
// groupItemtitle spelling the market API sometimes emits.
type RawMarket struct {
	ID             flexString   `json:"id"`
	MarketID       flexString   `json:"marketId"`
	GroupItemTitle string       `json:"groupItemTitle"`
	Question       string       `json:"question"`
	Title          string       `json:"title"`
	Name           string       `json:"name"`
	Metadata       *RawMetadata `json:"metadata"`
	Outcomes       flexStrings  `json:"outcomes"`
	OutcomePrices  flexStrings  `json:"outcomePrices"`
	Price          *flexFloat   `json:"price"`
	YesPrice       *flexFloat   `json:"yesPrice"`
	Probability    *flexFloat   `json:"probability"`
	YesPercent     *flexFloat   `json:"yesPercent"`
	Pricing        *RawPricing  `json:"pricing"`
	Status         string       `json:"status"`
}

// RawEvent is the superset of both upstream event shapes after boundary
// decoding. Aliased fields are kept separate here; the normalizer resolves
// the priority chains.
type RawEvent struct {
	ID             flexString  `json:"id"`
	EventID        flexString  `json:"eventId"`
	Slug           string      `json:"slug"`
	Ticker         string      `json:"ticker"`
	Title          string      `json:"title"`
	Question       string      `json:"question"`
	Description    string      `json:"description"`
	CloseCondition string      `json:"closeCondition"`
	Image          string      `json:"image"`
	Icon           string      `json:"icon"`

	Metadata *RawMetadata `json:"metadata"`

	Volume      *flexFloat `json:"volume"`
	VolumeClob  *flexFloat `json:"volumeClob"`
	VolumeUsd   *flexFloat `json:"volumeUsd"`
	TotalVolume *flexFloat `json:"totalVolume"`
	TvlDollars  *flexFloat `json:"tvlDollars"`

	Liquidity      *flexFloat `json:"liquidity"`
	LiquidityClob  *flexFloat `json:"liquidityClob"`
	LiquidityUsd   *flexFloat `json:"liquidityUsd"`
	TotalLiquidity *flexFloat `json:"totalLiquidity"`

	StartDate     *flexTime `json:"startDate"`
	CreatedAt     *flexTime `json:"createdAt"`
	CreatedSnake  *flexTime `json:"created_at"`
	EndDate       *flexTime `json:"endDate"`
	EndDateSnake  *flexTime `json:"endDate_iso"`
	ClosesAt      *flexTime `json:"closesAt"`
	ClosedTime    *flexTime `json:"closedTime"`
	BeginAt       *flexTime `json:"beginAt"`

	Outcomes      flexStrings `json:"outcomes"`
	OutcomePrices flexStrings `json:"outcomePrices"`
	Markets       []RawMarket `json:"markets"`

	Active   *bool `json:"active"`
	Closed   *bool `json:"closed"`
	IsActive *bool `json:"isActive"`

	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// Shape classifies the record. Aggregator markers (eventId, isActive, or a
// pricing block on any sub-market) are checked first; anything carrying the
// market API's identity or outcome fields is market-style; the rest is
// unknown.
func (e *RawEvent) Shape() Shape {
	if e.EventID != "" || e.IsActive != nil {
		return ShapeAggregator
	}
	for i := range e.Markets {
		if e.Markets[i].Pricing != nil {
			return ShapeAggregator
		}
	}
	if e.ID != "" || e.Slug != "" || e.Title != "" || e.Question != "" ||
		len(e.Markets) > 0 || len(e.Outcomes) > 0 {
		return ShapeMarket
	}
	return ShapeUnknown
}

// DecodeEvent decodes one raw record and classifies its shape. Malformed
// JSON is the only hard error; a well-formed record of unknown shape is
// returned with ShapeUnknown so the caller can decide.
func DecodeEvent(data []byte) (*RawEvent, Shape, error) {
	var e RawEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, ShapeUnknown, err
	}
	return &e, e.Shape(), nil
}

// listingKeys is the key priority the original client used when a listing
// response wraps its records in an object.
var listingKeys = []string{"data", "events", "results", "markets", "items", "list"}

// ExtractRecords pulls the record array out of a listing response body.
// The body may be a bare array, an object with one of the known wrapper
// keys, or an object whose first array-valued field (in sorted key order,
// for determinism) holds the records. Anything else is ErrUnrecognizedPayload.
func ExtractRecords(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrUnrecognizedPayload
	}

	if trimmed[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, err
	}

	for _, key := range listingKeys {
		if raw, ok := wrapper[key]; ok {
			var records []json.RawMessage
			if err := json.Unmarshal(raw, &records); err == nil {
				return records, nil
			}
		}
	}

	// Fallback: the first non-empty array-valued field.
	keys := make([]string, 0, len(wrapper))
	for k := range wrapper {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var records []json.RawMessage
		if err := json.Unmarshal(wrapper[k], &records); err == nil && len(records) > 0 {
			return records, nil
		}
	}

	return nil, ErrUnrecognizedPayload
}
