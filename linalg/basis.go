package linalg

import "math"

// BasisDot returns the matrix-vector product basis · v.
// The result keeps the element type of the inputs; convert with Vec2Of or
// Mat2Of first when mixing integer and real operands.
func BasisDot[T Number](basis Mat2[T], v Vec2[T]) Vec2[T] {
	var out Vec2[T]
	for i := 0; i < 2; i++ {
		out[i] = basis[i][0]*v[0] + basis[i][1]*v[1]
	}
	return out
}

// Rotate rotates v counter-clockwise and always returns real components.
//
// theta is converted to radians as theta*2π/180, so the vector turns through
// 2*theta degrees. Callers that want a plain rotation by d degrees pass d/2.
func Rotate[T Number](v Vec2[T], theta float64) Vec2[float64] {
	t := theta * 2 * math.Pi / 180.0
	cos, sin := math.Cos(t), math.Sin(t)
	x, y := float64(v[0]), float64(v[1])
	return Vec2[float64]{
		cos*x - sin*y,
		sin*x + cos*y,
	}
}

// Distance returns the Euclidean distance between two points.
func Distance[T Number](a, b Vec2[T]) float64 {
	dx := float64(a[0]) - float64(b[0])
	dy := float64(a[1]) - float64(b[1])
	return math.Sqrt(dx*dx + dy*dy)
}

// Len returns the Euclidean length of v.
func Len[T Number](v Vec2[T]) float64 {
	return Distance(v, Vec2[T]{})
}
