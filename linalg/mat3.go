package linalg

import "fmt"

// Vec3DotMat3 returns the row-vector product a · m:
// out[i] = a[0]*m[0][i] + a[1]*m[1][i] + a[2]*m[2][i].
// Integer inputs stay integer.
func Vec3DotMat3[T Number](a Vec3[T], m Mat3[T]) Vec3[T] {
	var out Vec3[T]
	for i := range a {
		out[i] = a[0]*m[0][i] + a[1]*m[1][i] + a[2]*m[2][i]
	}
	return out
}

// Determinant3 returns the determinant of m by cofactor expansion along row 0,
// addressing the minors with cyclic column indices.
func Determinant3[T Number](m Mat3[T]) float64 {
	f := Mat3Of[float64](m)
	det := 0.0
	for i := 0; i < 3; i++ {
		det += f[0][i] * (f[1][(i+1)%3]*f[2][(i+2)%3] - f[1][(i+2)%3]*f[2][(i+1)%3])
	}
	return det
}

// Invert3 returns the inverse of m as adj(m)/det(m).
// A zero determinant yields ErrSingular and the zero matrix.
func Invert3[T Number](m Mat3[T]) (Mat3[float64], error) {
	det := Determinant3(m)
	if det == 0 {
		return Mat3[float64]{}, fmt.Errorf("invert %v: %w", m, ErrSingular)
	}

	f := Mat3Of[float64](m)
	var inv Mat3[float64]
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			inv[i][j] = (f[(j+1)%3][(i+1)%3]*f[(j+2)%3][(i+2)%3] -
				f[(j+1)%3][(i+2)%3]*f[(j+2)%3][(i+1)%3]) / det
		}
	}
	return inv, nil
}
