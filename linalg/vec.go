// Package linalg provides the fixed-size vector and matrix kernel used by the
// lattice search: 2D rotation and basis transforms, distances, integer GCD and
// 3x3 determinant/inverse.
//
// All types are arrays, so they are copied on every call and a wrong-sized
// input cannot be constructed. Functions never modify their arguments.
package linalg

import "golang.org/x/exp/constraints"

// Number is any integer or floating point scalar.
type Number interface {
	constraints.Integer | constraints.Float
}

// Vec2 is a 2-component vector.
type Vec2[T Number] [2]T

// Vec3 is a 3-component vector.
type Vec3[T Number] [3]T

// Mat2 is a 2x2 matrix in row-major order; m[r][c] is row r, column c.
type Mat2[T Number] [2][2]T

// Mat3 is a 3x3 matrix in row-major order; m[r][c] is row r, column c.
type Mat3[T Number] [3][3]T

// V2 creates a new Vec2.
func V2[T Number](x, y T) Vec2[T] {
	return Vec2[T]{x, y}
}

// V3 creates a new Vec3.
func V3[T Number](x, y, z T) Vec3[T] {
	return Vec3[T]{x, y, z}
}

// Identity2 returns the 2x2 identity.
func Identity2[T Number]() Mat2[T] {
	return Mat2[T]{{1, 0}, {0, 1}}
}

// Identity3 returns the 3x3 identity.
func Identity3[T Number]() Mat3[T] {
	return Mat3[T]{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Vec2Of converts the components of v to another scalar type.
func Vec2Of[U, T Number](v Vec2[T]) Vec2[U] {
	return Vec2[U]{U(v[0]), U(v[1])}
}

// Vec3Of converts the components of v to another scalar type.
func Vec3Of[U, T Number](v Vec3[T]) Vec3[U] {
	return Vec3[U]{U(v[0]), U(v[1]), U(v[2])}
}

// Mat2Of converts the entries of m to another scalar type.
func Mat2Of[U, T Number](m Mat2[T]) Mat2[U] {
	return Mat2[U]{
		{U(m[0][0]), U(m[0][1])},
		{U(m[1][0]), U(m[1][1])},
	}
}

// Mat3Of converts the entries of m to another scalar type.
func Mat3Of[U, T Number](m Mat3[T]) Mat3[U] {
	var out Mat3[U]
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r][c] = U(m[r][c])
		}
	}
	return out
}

// Add returns the vector sum a + b.
func (a Vec2[T]) Add(b Vec2[T]) Vec2[T] {
	return Vec2[T]{a[0] + b[0], a[1] + b[1]}
}

// Sub returns the vector difference a - b.
func (a Vec2[T]) Sub(b Vec2[T]) Vec2[T] {
	return Vec2[T]{a[0] - b[0], a[1] - b[1]}
}

// Scale returns the scalar product a * s.
func (a Vec2[T]) Scale(s T) Vec2[T] {
	return Vec2[T]{a[0] * s, a[1] * s}
}

// Dot returns the dot product a · b.
func (a Vec2[T]) Dot(b Vec2[T]) T {
	return a[0]*b[0] + a[1]*b[1]
}

// Cross returns the z component of the 3D cross product of a and b.
func (a Vec2[T]) Cross(b Vec2[T]) T {
	return a[0]*b[1] - a[1]*b[0]
}

// IsZero reports whether both components are zero.
func (a Vec2[T]) IsZero() bool {
	return a[0] == 0 && a[1] == 0
}

// Transpose returns the transposed matrix.
func (m Mat2[T]) Transpose() Mat2[T] {
	return Mat2[T]{
		{m[0][0], m[1][0]},
		{m[0][1], m[1][1]},
	}
}

// Det returns the determinant of m in its own scalar type.
func (m Mat2[T]) Det() T {
	return m[0][0]*m[1][1] - m[0][1]*m[1][0]
}

// Transpose returns the transposed matrix.
func (m Mat3[T]) Transpose() Mat3[T] {
	return Mat3[T]{
		{m[0][0], m[1][0], m[2][0]},
		{m[0][1], m[1][1], m[2][1]},
		{m[0][2], m[1][2], m[2][2]},
	}
}

// Mul returns the matrix product m · b, built row by row with Vec3DotMat3.
func (m Mat3[T]) Mul(b Mat3[T]) Mat3[T] {
	return Mat3[T]{
		Vec3DotMat3(Vec3[T](m[0]), b),
		Vec3DotMat3(Vec3[T](m[1]), b),
		Vec3DotMat3(Vec3[T](m[2]), b),
	}
}
