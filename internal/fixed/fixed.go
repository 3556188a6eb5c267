// Package fixed implements the simulation's 16.16 fixed-point numbers and
// binary angle measurement (a full circle is 2^32).
package fixed

import "math"

// Fixed is a 16.16 fixed-point map coordinate.
type Fixed int32

// Angle is a binary angle; it wraps exactly like the circle it measures.
type Angle uint32

const (
	FracBits = 16
	FracUnit Fixed = 1 << FracBits

	Angle45  Angle = 0x20000000
	Angle90  Angle = 0x40000000
	Angle180 Angle = 0x80000000
	Angle270 Angle = 0xc0000000
	AngleMax Angle = 0xffffffff

	// Angle1 is one degree, truncated.
	Angle1 Angle = Angle45 / 45

	AngleToFineShift = 19
	FineAngles       = 8192
)

func FromInt(i int) Fixed { return Fixed(i << FracBits) }

func FromFloat(f float64) Fixed { return Fixed(math.Round(f * float64(FracUnit))) }

func (f Fixed) Float() float64 { return float64(f) / float64(FracUnit) }

func (f Fixed) Float32() float32 { return float32(f) / float32(FracUnit) }

// Int truncates toward negative infinity.
func (f Fixed) Int() int { return int(f >> FracBits) }

// Mul multiplies two fixed values with a 64-bit intermediate.
func Mul(a, b Fixed) Fixed { return Fixed((int64(a) * int64(b)) >> FracBits) }

// Div divides a by b; division by zero saturates toward the sign of a.
func Div(a, b Fixed) Fixed {
	if b == 0 {
		if a < 0 {
			return math.MinInt32
		}
		return math.MaxInt32
	}
	return Fixed((int64(a) << FracBits) / int64(b))
}

// DMulScale16 computes (a*b + c*d) >> 16 without intermediate overflow.
func DMulScale16(a, b, c, d Fixed) Fixed {
	return Fixed((int64(a)*int64(b) + int64(c)*int64(d)) >> FracBits)
}

// Degrees converts an angle to degrees in [0, 360).
func (a Angle) Degrees() float64 { return float64(a) * 360.0 / 4294967296.0 }

// FineDegrees converts through the fine-angle table resolution, matching how the
// camera yaw is derived from the view angle.
func (a Angle) FineDegrees() float32 {
	return float32(a>>AngleToFineShift) * 360.0 / FineAngles
}

// Radians converts an angle to radians in [0, 2π).
func (a Angle) Radians() float64 { return a.Degrees() * math.Pi / 180.0 }

// FromDegrees converts degrees to an angle, wrapping outside [0, 360).
func FromDegrees(deg float64) Angle {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return Angle(uint64(math.Round(deg * 4294967296.0 / 360.0)))
}

// SignedDegrees interprets a as a signed angle, the representation used for pitch.
func (a Angle) SignedDegrees() float64 { return float64(int32(a)) / float64(Angle1) }

// PointToAngle returns the angle of the vector (x, y) from the origin.
func PointToAngle(x, y float64) Angle {
	if x == 0 && y == 0 {
		return 0
	}
	return FromDegrees(math.Atan2(y, x) * 180.0 / math.Pi)
}

// PointToAngle2 returns the angle from (x1, y1) to (x2, y2) in fixed coordinates.
func PointToAngle2(x1, y1, x2, y2 Fixed) Angle {
	return PointToAngle((x2 - x1).Float(), (y2 - y1).Float())
}
