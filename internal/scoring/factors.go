package scoring

import (
	"database/sql/driver"
	"encoding/json"
)

// Signal name constants. These are the keys of the Factors map and the
// only signals the engine understands.
const (
	SignalEmailOpens       = "emailOpens"
	SignalEmailClicks      = "emailClicks"
	SignalWebsiteVisits    = "websiteVisits"
	SignalContentDownloads = "contentDownloads"
	SignalSocialEngagement = "socialEngagement"
	SignalReplyCount       = "replyCount"
	SignalMeetingRequests  = "meetingRequests"
)

// signalWeights are the fixed per-signal weights. They are part of the
// scoring contract and are not configurable.
var signalWeights = map[string]float64{
	SignalEmailOpens:       0.2,
	SignalEmailClicks:      0.3,
	SignalWebsiteVisits:    0.25,
	SignalContentDownloads: 0.15,
	SignalSocialEngagement: 0.1,
	SignalReplyCount:       0.4,
	SignalMeetingRequests:  0.5,
}

// Factor is one signal's observation: how often it fired and the fixed
// weight it carries in the formula.
type Factor struct {
	Count  float64 `json:"count"`
	Weight float64 `json:"weight"`
}

// Factors maps signal name to its observation.
type Factors map[string]Factor

// NewFactors returns a Factors map with every known signal present at
// count zero and its fixed weight applied.
func NewFactors() Factors {
	f := make(Factors, len(signalWeights))
	for name, weight := range signalWeights {
		f[name] = Factor{Count: 0, Weight: weight}
	}
	return f
}

// WeightFor returns the fixed weight for a signal name, or 0 for an
// unknown signal.
func WeightFor(signal string) float64 {
	return signalWeights[signal]
}

// KnownSignal reports whether the engine recognizes the signal name.
func KnownSignal(signal string) bool {
	_, ok := signalWeights[signal]
	return ok
}

// SetCount sets a signal's count, clamping negatives to zero and forcing
// the canonical weight. Unknown signals are ignored.
func (f Factors) SetCount(signal string, count float64) {
	weight, ok := signalWeights[signal]
	if !ok {
		return
	}
	if count < 0 {
		count = 0
	}
	f[signal] = Factor{Count: count, Weight: weight}
}

// Count returns a signal's count, 0 when absent.
func (f Factors) Count(signal string) float64 {
	return f[signal].Count
}

// DataPoints counts the signals with at least one observation.
func (f Factors) DataPoints() int {
	n := 0
	for _, factor := range f {
		if factor.Count > 0 {
			n++
		}
	}
	return n
}

// Clone returns an independent copy so a recompute never mutates the
// caller's map.
func (f Factors) Clone() Factors {
	out := make(Factors, len(f))
	for name, factor := range f {
		out[name] = factor
	}
	return out
}

// Normalize returns a copy with every known signal present, canonical
// weights restored, and negative counts clamped to zero. Unknown signals
// are dropped.
func (f Factors) Normalize() Factors {
	out := NewFactors()
	for name, factor := range f {
		out.SetCount(name, factor.Count)
	}
	return out
}

// Value / Scan store Factors as a JSONB column.

func (f Factors) Value() (driver.Value, error) {
	if f == nil {
		f = NewFactors()
	}
	return json.Marshal(f)
}

func (f *Factors) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(b, f)
}
