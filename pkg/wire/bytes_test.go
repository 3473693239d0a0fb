package wire

import (
	"errors"
	"math"
	"testing"
)

func TestBytesToInt(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  int64
	}{
		{"empty", nil, 0},
		{"one", []byte{0x00, 0x01}, 1},
		{"minus one", []byte{0xFF}, -1},
		{"positive byte", []byte{0x7F}, 127},
		{"negative byte", []byte{0x80}, -128},
		{"negative short", []byte{0xFF, 0x38}, -200},
		{"three bytes", []byte{0x01, 0x00, 0x00}, 65536},
		{"three bytes negative", []byte{0xFF, 0x00, 0x00}, -65536},
		{"int32", []byte{0x7F, 0xFF, 0xFF, 0xFF}, math.MaxInt32},
		{"int64 max", []byte{0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, math.MaxInt64},
		{"int64 min", []byte{0x80, 0, 0, 0, 0, 0, 0, 0}, math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BytesToInt(tt.input)
			if err != nil {
				t.Fatalf("BytesToInt(%x): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("BytesToInt(%x) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestBytesToIntTooLong(t *testing.T) {
	_, err := BytesToInt(make([]byte, 9))
	if !errors.Is(err, ErrInvalidLength) {
		t.Errorf("expected ErrInvalidLength, got %v", err)
	}
}

func TestIntToBytes(t *testing.T) {
	tests := []struct {
		value   int64
		wantLen int
	}{
		{0, 1},
		{-1, 1},
		{127, 1},
		{128, 2},
		{-129, 2},
		{40000, 4},
		{math.MinInt32, 4},
		{1 << 40, 8},
		{math.MinInt64, 8},
	}

	for _, tt := range tests {
		b := IntToBytes(tt.value)
		if len(b) != tt.wantLen {
			t.Errorf("IntToBytes(%d) length = %d, want %d", tt.value, len(b), tt.wantLen)
		}
		got, err := BytesToInt(b)
		if err != nil {
			t.Fatalf("BytesToInt: %v", err)
		}
		if got != tt.value {
			t.Errorf("decode(IntToBytes(%d)) = %d", tt.value, got)
		}
	}
}

func TestBytesToFloat(t *testing.T) {
	t.Run("Float64", func(t *testing.T) {
		got, err := BytesToFloat(FloatToBytes(21.5))
		if err != nil {
			t.Fatalf("BytesToFloat: %v", err)
		}
		if got != 21.5 {
			t.Errorf("got %v, want 21.5", got)
		}
	})

	t.Run("Float32", func(t *testing.T) {
		// 1.5 as IEEE 754 single precision.
		got, err := BytesToFloat([]byte{0x3F, 0xC0, 0x00, 0x00})
		if err != nil {
			t.Fatalf("BytesToFloat: %v", err)
		}
		if got != 1.5 {
			t.Errorf("got %v, want 1.5", got)
		}
	})

	t.Run("BadLength", func(t *testing.T) {
		if _, err := BytesToFloat([]byte{1, 2}); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("expected ErrInvalidLength, got %v", err)
		}
	})
}
