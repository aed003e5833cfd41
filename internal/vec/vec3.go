package vec

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Используется в первую очередь как позиция чанка в мире.
type Vec3 struct {
	X int
	Y int
	Z int
}

// Offset возвращает позицию, смещённую на (dx, dy, dz) чанков
func (v Vec3) Offset(dx, dy, dz int) Vec3 {
	return Vec3{X: v.X + dx, Y: v.Y + dy, Z: v.Z + dz}
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub вычитает другой вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// SquaredDistanceTo возвращает квадрат евклидова расстояния до другого вектора.
// Квадрат достаточен для сортировки и сравнения, корень не берём.
func (v Vec3) SquaredDistanceTo(other Vec3) int {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// TaxicabDistanceTo возвращает манхэттенское расстояние до другого вектора
func (v Vec3) TaxicabDistanceTo(other Vec3) int {
	return abs(v.X-other.X) + abs(v.Y-other.Y) + abs(v.Z-other.Z)
}

// ColumnPos возвращает координаты колонки (проекция (X, Z))
func (v Vec3) ColumnPos() Vec2 {
	return Vec2{X: v.X, Y: v.Z}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
