package observe

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/lwm2m-agent/lwm2mcore/pkg/model"
	"github.com/lwm2m-agent/lwm2mcore/pkg/wire"
)

// Reason explains a notification decision.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonCancelled
	ReasonMinPeriod
	ReasonMaxPeriod
	ReasonInitial
	ReasonThreshold
	ReasonChanged
	ReasonUnchanged
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "NONE"
	case ReasonCancelled:
		return "CANCELLED"
	case ReasonMinPeriod:
		return "MIN_PERIOD"
	case ReasonMaxPeriod:
		return "MAX_PERIOD"
	case ReasonInitial:
		return "INITIAL"
	case ReasonThreshold:
		return "THRESHOLD"
	case ReasonChanged:
		return "CHANGED"
	case ReasonUnchanged:
		return "UNCHANGED"
	default:
		return "UNKNOWN"
	}
}

// Decision is the outcome of evaluating an observed resource.
type Decision struct {
	Notify bool
	Reason Reason
}

// Periods are the effective notification periods of a resource.
type Periods struct {
	Min time.Duration
	// Max is zero when no maximum period applies.
	Max time.Duration
}

// EffectivePeriods resolves pmin and pmax: resource attribute, else object
// attribute, else the configured default.
func (c Config) EffectivePeriods(obj, res model.AttributeSet) Periods {
	p := Periods{Min: c.DefaultMinPeriod, Max: c.DefaultMaxPeriod}
	switch {
	case res.MinPeriod != nil:
		p.Min = seconds(*res.MinPeriod)
	case obj.MinPeriod != nil:
		p.Min = seconds(*obj.MinPeriod)
	}
	switch {
	case res.MaxPeriod != nil:
		p.Max = seconds(*res.MaxPeriod)
	case obj.MaxPeriod != nil:
		p.Max = seconds(*obj.MaxPeriod)
	}
	return p
}

// Evaluate decides whether current must be notified for r, which belongs to
// o, given the time since its last notification. o may be nil.
//
// current is compared against r's cache, the last notified value. The
// initial notification is not decided here: it belongs to the observation,
// and an empty cache is a legitimate empty value.
func (c Config) Evaluate(o *model.Object, r *model.Resource, current []byte, sinceLast time.Duration) Decision {
	var objAttrs model.AttributeSet
	if o != nil {
		objAttrs = o.Attributes()
	}
	resAttrs := r.Attributes()

	if resAttrs.Cancelled() || objAttrs.Cancelled() {
		return Decision{Reason: ReasonCancelled}
	}

	p := c.EffectivePeriods(objAttrs, resAttrs)
	if sinceLast < p.Min {
		return Decision{Reason: ReasonMinPeriod}
	}
	if p.Max > 0 && p.Max >= p.Min && sinceLast >= p.Max {
		return Decision{Notify: true, Reason: ReasonMaxPeriod}
	}
	if r.Type().IsNumeric() && hasThresholds(resAttrs) {
		old, errOld := numericValue(r.Type(), r.Cache())
		cur, errCur := numericValue(r.Type(), current)
		if errOld == nil && errCur == nil {
			if thresholdMet(resAttrs, old, cur) {
				return Decision{Notify: true, Reason: ReasonThreshold}
			}
			return Decision{Reason: ReasonUnchanged}
		}
	}

	if !r.CacheEqual(current) {
		return Decision{Notify: true, Reason: ReasonChanged}
	}
	return Decision{Reason: ReasonUnchanged}
}

// Evaluate applies DefaultConfig().Evaluate.
func Evaluate(o *model.Object, r *model.Resource, current []byte, sinceLast time.Duration) Decision {
	return DefaultConfig().Evaluate(o, r, current, sinceLast)
}

func hasThresholds(a model.AttributeSet) bool {
	return a.GreaterThan != nil || a.LessThan != nil || a.Step != nil
}

func thresholdMet(a model.AttributeSet, old, cur float64) bool {
	if a.GreaterThan != nil {
		gt := *a.GreaterThan
		if (old <= gt) != (cur <= gt) {
			return true
		}
	}
	if a.LessThan != nil {
		lt := *a.LessThan
		if (old < lt) != (cur < lt) {
			return true
		}
	}
	if a.Step != nil && math.Abs(cur-old) >= *a.Step {
		return true
	}
	return false
}

// numericValue decodes a raw big-endian resource value.
func numericValue(typ model.ResourceType, raw []byte) (float64, error) {
	switch typ {
	case model.TypeFloat:
		return wire.BytesToFloat(raw)
	case model.TypeUnsigned:
		if len(raw) > wire.MaxIntLength {
			return 0, wire.ErrInvalidLength
		}
		var buf [8]byte
		copy(buf[8-len(raw):], raw)
		return float64(binary.BigEndian.Uint64(buf[:])), nil
	default:
		v, err := wire.BytesToInt(raw)
		return float64(v), err
	}
}

func seconds(s uint32) time.Duration {
	return time.Duration(s) * time.Second
}
