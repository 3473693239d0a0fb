package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AttributeKind identifies one of the six observation attributes.
type AttributeKind uint8

const (
	// AttrMinPeriod is the minimum time in seconds between notifications.
	AttrMinPeriod AttributeKind = iota
	// AttrMaxPeriod is the maximum time in seconds between notifications.
	AttrMaxPeriod
	// AttrGreaterThan notifies when the value crosses above a threshold.
	AttrGreaterThan
	// AttrLessThan notifies when the value crosses below a threshold.
	AttrLessThan
	// AttrStep notifies when the value moved by at least this amount.
	AttrStep
	// AttrCancel disables an active observation.
	AttrCancel
)

var attributeKindNames = [...]string{"pmin", "pmax", "gt", "lt", "st", "cancel"}

// String returns the query parameter name of the attribute.
func (k AttributeKind) String() string {
	if int(k) < len(attributeKindNames) {
		return attributeKindNames[k]
	}
	return fmt.Sprintf("attr(%d)", uint8(k))
}

// IsThreshold reports whether k only applies to numeric resources.
func (k AttributeKind) IsThreshold() bool {
	return k == AttrGreaterThan || k == AttrLessThan || k == AttrStep
}

// ParseAttributeKind returns the attribute with the given query name.
func ParseAttributeKind(name string) (AttributeKind, error) {
	for i, n := range attributeKindNames {
		if n == name {
			return AttributeKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown attribute %q", ErrInvalidAttribute, name)
}

// AttributeSet holds the observation attributes of an object or resource.
// A nil field is absent and never influences notification decisions.
type AttributeSet struct {
	MinPeriod   *uint32  `cbor:"1,keyasint,omitempty"`
	MaxPeriod   *uint32  `cbor:"2,keyasint,omitempty"`
	GreaterThan *float64 `cbor:"3,keyasint,omitempty"`
	LessThan    *float64 `cbor:"4,keyasint,omitempty"`
	Step        *float64 `cbor:"5,keyasint,omitempty"`
	Cancel      *bool    `cbor:"6,keyasint,omitempty"`
}

// set validates value for kind and stores it. The set is unchanged on error.
func (a *AttributeSet) set(kind AttributeKind, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s=%v", ErrInvalidAttribute, kind, value)
	}

	switch kind {
	case AttrMinPeriod, AttrMaxPeriod:
		if value < 0 || value > math.MaxUint32 || value != math.Trunc(value) {
			return fmt.Errorf("%w: %s must be whole seconds, got %v", ErrInvalidAttribute, kind, value)
		}
		v := uint32(value)
		if kind == AttrMinPeriod {
			a.MinPeriod = &v
		} else {
			a.MaxPeriod = &v
		}
	case AttrGreaterThan:
		a.GreaterThan = &value
	case AttrLessThan:
		a.LessThan = &value
	case AttrStep:
		if value < 0 {
			return fmt.Errorf("%w: st must not be negative, got %v", ErrInvalidAttribute, value)
		}
		a.Step = &value
	case AttrCancel:
		v := value != 0
		a.Cancel = &v
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidAttribute, kind)
	}
	return nil
}

// clear makes kind absent.
func (a *AttributeSet) clear(kind AttributeKind) error {
	switch kind {
	case AttrMinPeriod:
		a.MinPeriod = nil
	case AttrMaxPeriod:
		a.MaxPeriod = nil
	case AttrGreaterThan:
		a.GreaterThan = nil
	case AttrLessThan:
		a.LessThan = nil
	case AttrStep:
		a.Step = nil
	case AttrCancel:
		a.Cancel = nil
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidAttribute, kind)
	}
	return nil
}

// Has reports whether kind is present.
func (a AttributeSet) Has(kind AttributeKind) bool {
	_, ok := a.Value(kind)
	return ok
}

// Value returns the value of kind as a float64. Cancel reports 1 for true.
func (a AttributeSet) Value(kind AttributeKind) (float64, bool) {
	switch kind {
	case AttrMinPeriod:
		if a.MinPeriod != nil {
			return float64(*a.MinPeriod), true
		}
	case AttrMaxPeriod:
		if a.MaxPeriod != nil {
			return float64(*a.MaxPeriod), true
		}
	case AttrGreaterThan:
		if a.GreaterThan != nil {
			return *a.GreaterThan, true
		}
	case AttrLessThan:
		if a.LessThan != nil {
			return *a.LessThan, true
		}
	case AttrStep:
		if a.Step != nil {
			return *a.Step, true
		}
	case AttrCancel:
		if a.Cancel != nil {
			if *a.Cancel {
				return 1, true
			}
			return 0, true
		}
	}
	return 0, false
}

// Active returns the present kinds in declaration order.
func (a AttributeSet) Active() []AttributeKind {
	var kinds []AttributeKind
	for k := AttrMinPeriod; k <= AttrCancel; k++ {
		if a.Has(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// IsEmpty reports whether no attribute is present.
func (a AttributeSet) IsEmpty() bool {
	return len(a.Active()) == 0
}

// Cancelled reports whether cancel is present and true.
func (a AttributeSet) Cancelled() bool {
	return a.Cancel != nil && *a.Cancel
}

// Clone returns a copy that shares no pointers with a.
func (a AttributeSet) Clone() AttributeSet {
	return AttributeSet{
		MinPeriod:   clonePtr(a.MinPeriod),
		MaxPeriod:   clonePtr(a.MaxPeriod),
		GreaterThan: clonePtr(a.GreaterThan),
		LessThan:    clonePtr(a.LessThan),
		Step:        clonePtr(a.Step),
		Cancel:      clonePtr(a.Cancel),
	}
}

// String returns the set in query form, e.g. "pmin=10&pmax=60".
func (a AttributeSet) String() string {
	parts := make([]string, 0, 6)
	for _, k := range a.Active() {
		v, _ := a.Value(k)
		parts = append(parts, k.String()+"="+strconv.FormatFloat(v, 'g', -1, 64))
	}
	return strings.Join(parts, "&")
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
