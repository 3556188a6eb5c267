package fixed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedArithmetic(t *testing.T) {
	assert.Equal(t, FromInt(6), Mul(FromInt(2), FromInt(3)))
	assert.Equal(t, FromInt(-6), Mul(FromInt(-2), FromInt(3)))
	assert.Equal(t, FromFloat(2.5), Div(FromInt(5), FromInt(2)))
	assert.Equal(t, Fixed(2147483647), Div(FromInt(1), 0))
	assert.Equal(t, FromInt(3+8), DMulScale16(FromInt(1), FromInt(3), FromInt(2), FromInt(4)))
	assert.Equal(t, -1, FromFloat(-0.5).Int())
	assert.InDelta(t, 1.25, FromFloat(1.25).Float(), 1e-9)
}

func TestAngleConversions(t *testing.T) {
	tests := []struct {
		name string
		a    Angle
		deg  float64
	}{
		{"zero", 0, 0},
		{"quarter", Angle90, 90},
		{"half", Angle180, 180},
		{"three quarters", Angle270, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.deg, tt.a.Degrees(), 1e-9)
			assert.InDelta(t, tt.deg, float64(tt.a.FineDegrees()), 1e-4)
			assert.Equal(t, tt.a, FromDegrees(tt.deg))
		})
	}
	assert.Equal(t, Angle270, FromDegrees(-90))
	assert.InDelta(t, -90, Angle270.SignedDegrees(), 0.01)
}

func TestPointToAngle(t *testing.T) {
	assert.Equal(t, Angle(0), PointToAngle(10, 0))
	assert.Equal(t, Angle90, PointToAngle(0, 10))
	assert.Equal(t, Angle180, PointToAngle(-10, 0))
	assert.Equal(t, Angle270, PointToAngle(0, -10))
	assert.Equal(t, Angle45, PointToAngle2(0, 0, FromInt(64), FromInt(64)))
}
