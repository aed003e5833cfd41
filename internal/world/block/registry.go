package block

import "sort"

// BlockID представляет идентификатор типа блока
type BlockID uint16

// Константы ID блоков
const (
	AirBlockID   BlockID = iota // 0
	StoneBlockID                // 1
	DirtBlockID                 // 2
	GrassBlockID                // 3
	SandBlockID                 // 4
	WaterBlockID                // 5
	WoodBlockID                 // 6
	LeavesBlockID               // 7
)

// Type описывает статические свойства типа блока.
// Opaque определяет, блокирует ли блок распространение света.
type Type struct {
	ID     BlockID `json:"id"`
	Name   string  `json:"name"`
	Opaque bool    `json:"opaque"`
}

var registry = make(map[BlockID]Type)

// Register добавляет тип блока в регистр
func Register(t Type) {
	registry[t.ID] = t
}

// Get возвращает тип для указанного ID
func Get(id BlockID) (Type, bool) {
	t, exists := registry[id]
	return t, exists
}

// IsOpaque сообщает, непрозрачен ли блок с указанным ID.
// Неизвестные ID считаются непрозрачными: лучше затемнить,
// чем осветить сквозь незарегистрированный блок.
func IsOpaque(id BlockID) bool {
	if id == AirBlockID {
		return false
	}
	t, exists := registry[id]
	if !exists {
		return true
	}
	return t.Opaque
}

// All возвращает все зарегистрированные типы, отсортированные по ID.
// Используется для отправки статических игровых данных клиенту.
func All() []Type {
	types := make([]Type, 0, len(registry))
	for _, t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].ID < types[j].ID })
	return types
}

func init() {
	// Базовый набор блоков; воздух прозрачный, вода пропускает свет
	Register(Type{ID: AirBlockID, Name: "air", Opaque: false})
	Register(Type{ID: StoneBlockID, Name: "stone", Opaque: true})
	Register(Type{ID: DirtBlockID, Name: "dirt", Opaque: true})
	Register(Type{ID: GrassBlockID, Name: "grass", Opaque: true})
	Register(Type{ID: SandBlockID, Name: "sand", Opaque: true})
	Register(Type{ID: WaterBlockID, Name: "water", Opaque: false})
	Register(Type{ID: WoodBlockID, Name: "wood", Opaque: true})
	Register(Type{ID: LeavesBlockID, Name: "leaves", Opaque: true})
}
