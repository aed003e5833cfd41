package vec

import "math"

// Vec3Float представляет трехмерный вектор с плавающими координатами.
// Используется для позиции игрока в мировых координатах (блоках).
type Vec3Float struct {
	X float64
	Y float64
	Z float64
}

// ToVec3 округляет координаты вниз до целых блоков
func (v Vec3Float) ToVec3() Vec3 {
	return Vec3{
		X: int(math.Floor(v.X)),
		Y: int(math.Floor(v.Y)),
		Z: int(math.Floor(v.Z)),
	}
}

// ContainingChunk возвращает позицию чанка, содержащего точку.
// chunkSize — длина ребра чанка в блоках.
func (v Vec3Float) ContainingChunk(chunkSize int) Vec3 {
	b := v.ToVec3()
	return Vec3{
		X: FloorDiv(b.X, chunkSize),
		Y: FloorDiv(b.Y, chunkSize),
		Z: FloorDiv(b.Z, chunkSize),
	}
}

// FloorDiv делит с округлением к минус бесконечности (для отрицательных координат)
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
