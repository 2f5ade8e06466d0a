package analytics

import (
	"fmt"
	"math"
)

// ChangeType classifies the direction of a period-over-period movement.
type ChangeType string

const (
	ChangeIncrease ChangeType = "increase"
	ChangeDecrease ChangeType = "decrease"
	ChangeNeutral  ChangeType = "neutral"
)

// Comparison pairs a current and previous period total with the computed
// percentage change and its direction. Consumers format and classify it;
// they never recompute the percentage, keeping displayed numbers consistent
// with the source of truth.
type Comparison struct {
	Current    float64    `json:"current"`
	Previous   float64    `json:"previous"`
	Change     float64    `json:"change"`
	ChangeType ChangeType `json:"change_type"`
}

// newChangeCutoff marks change magnitudes that cannot be a real growth
// percentage: they signal a previous total of zero. Non-finite values are
// the primary signal; the magnitude test backstops transports that clamp
// infinities to large numbers.
const newChangeCutoff = 10000

// newChangeSentinel is emitted when previous is zero and current is not.
// It is finite so it survives JSON, and far past newChangeCutoff so every
// classifier reads it as "new".
const newChangeSentinel = 1e9

// Compare derives the percentage change between two period totals.
func Compare(current, previous float64) Comparison {
	c := Comparison{Current: current, Previous: previous}
	switch {
	case previous == 0 && current == 0:
		c.ChangeType = ChangeNeutral
	case previous == 0:
		c.Change = newChangeSentinel
		if current < 0 {
			c.Change = -newChangeSentinel
			c.ChangeType = ChangeDecrease
		} else {
			c.ChangeType = ChangeIncrease
		}
	default:
		c.Change = (current - previous) / previous * 100
		switch {
		case c.Change > 0:
			c.ChangeType = ChangeIncrease
		case c.Change < 0:
			c.ChangeType = ChangeDecrease
		default:
			c.ChangeType = ChangeNeutral
		}
	}
	return c
}

// ChangeBadge is the display classification of a comparison.
type ChangeBadge struct {
	Text      string     `json:"text"`
	IsNew     bool       `json:"is_new"`
	Direction ChangeType `json:"direction"`
}

// ClassifyChange formats a pre-computed change value. It never recomputes
// the percentage from current/previous:
//   - a nil or NaN change reads "0.00" and is not new;
//   - previous zero with positive current and a non-finite or absurdly
//     large change is "NEW" (no numeric percentage);
//   - previous zero with a normal finite change uses the supplied value
//     as-is;
//   - otherwise the absolute change is formatted to two decimals, with the
//     direction taken from the supplied change type.
func ClassifyChange(change *float64, previous, current float64, direction ChangeType) ChangeBadge {
	if direction == "" {
		direction = ChangeNeutral
	}
	if change == nil || math.IsNaN(*change) {
		return ChangeBadge{Text: "0.00", IsNew: false, Direction: direction}
	}
	if previous == 0 && current > 0 {
		if math.IsInf(*change, 0) || math.Abs(*change) > newChangeCutoff {
			return ChangeBadge{Text: "NEW", IsNew: true, Direction: ChangeIncrease}
		}
	}
	if math.IsInf(*change, 0) {
		return ChangeBadge{Text: "0.00", IsNew: false, Direction: direction}
	}
	return ChangeBadge{
		Text:      fmt.Sprintf("%.2f", math.Abs(*change)),
		IsNew:     false,
		Direction: direction,
	}
}

// Classify is a convenience over a full Comparison record.
func (c Comparison) Classify() ChangeBadge {
	change := c.Change
	return ClassifyChange(&change, c.Previous, c.Current, c.ChangeType)
}
