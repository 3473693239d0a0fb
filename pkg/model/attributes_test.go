package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeKindString(t *testing.T) {
	tests := []struct {
		kind AttributeKind
		want string
	}{
		{AttrMinPeriod, "pmin"},
		{AttrMaxPeriod, "pmax"},
		{AttrGreaterThan, "gt"},
		{AttrLessThan, "lt"},
		{AttrStep, "st"},
		{AttrCancel, "cancel"},
		{AttributeKind(9), "attr(9)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestParseAttributeKind(t *testing.T) {
	for k := AttrMinPeriod; k <= AttrCancel; k++ {
		got, err := ParseAttributeKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseAttributeKind("epmin")
	assert.ErrorIs(t, err, ErrInvalidAttribute)
}

func TestAttributeSetValidation(t *testing.T) {
	tests := []struct {
		name  string
		kind  AttributeKind
		value float64
		ok    bool
	}{
		{"pmin zero", AttrMinPeriod, 0, true},
		{"pmin whole", AttrMinPeriod, 10, true},
		{"pmin fractional", AttrMinPeriod, 1.5, false},
		{"pmin negative", AttrMinPeriod, -1, false},
		{"pmax too large", AttrMaxPeriod, math.MaxUint32 + 1, false},
		{"gt negative", AttrGreaterThan, -40.5, true},
		{"lt", AttrLessThan, 3.3, true},
		{"st", AttrStep, 0.5, true},
		{"st negative", AttrStep, -0.5, false},
		{"nan", AttrGreaterThan, math.NaN(), false},
		{"inf", AttrLessThan, math.Inf(1), false},
		{"cancel", AttrCancel, 1, true},
		{"unknown kind", AttributeKind(42), 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a AttributeSet
			err := a.set(tt.kind, tt.value)
			if tt.ok {
				require.NoError(t, err)
				assert.True(t, a.Has(tt.kind))
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidAttribute), "got %v", err)
			assert.True(t, a.IsEmpty(), "failed set must not change the set")
		})
	}
}

func TestAttributeSetActiveAndClear(t *testing.T) {
	var a AttributeSet
	require.NoError(t, a.set(AttrStep, 2))
	require.NoError(t, a.set(AttrMinPeriod, 10))
	require.NoError(t, a.set(AttrCancel, 0))

	assert.Equal(t, []AttributeKind{AttrMinPeriod, AttrStep, AttrCancel}, a.Active())
	assert.False(t, a.Cancelled())
	assert.Equal(t, "pmin=10&st=2&cancel=0", a.String())

	require.NoError(t, a.clear(AttrStep))
	assert.False(t, a.Has(AttrStep))
	_, ok := a.Value(AttrStep)
	assert.False(t, ok)

	require.NoError(t, a.set(AttrCancel, 1))
	assert.True(t, a.Cancelled())
}

func TestAttributeSetClone(t *testing.T) {
	var a AttributeSet
	require.NoError(t, a.set(AttrMaxPeriod, 60))
	require.NoError(t, a.set(AttrGreaterThan, 20))

	c := a.Clone()
	*c.MaxPeriod = 1
	*c.GreaterThan = 1

	assert.Equal(t, uint32(60), *a.MaxPeriod)
	assert.Equal(t, 20.0, *a.GreaterThan)
	assert.Nil(t, c.MinPeriod)
}
