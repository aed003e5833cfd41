package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"

	"github.com/annel0/voxel-server/internal/vec"
	"github.com/annel0/voxel-server/internal/world"
)

// Переиспользуемые zstd кодек-объекты; EncodeAll/DecodeAll потокобезопасны
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Encode сериализует сообщение: байт типа, затем полезная нагрузка
func Encode(msg Message) ([]byte, error) {
	buf := []byte{byte(msg.Type())}
	switch m := msg.(type) {
	case *SetPos:
		buf = appendFloat64(buf, m.Pos.X)
		buf = appendFloat64(buf, m.Pos.Y)
		buf = appendFloat64(buf, m.Pos.Z)
		return buf, nil

	case *SetRenderDistance:
		rd := m.RenderDistance
		for _, v := range [6]int{rd.XMin, rd.XMax, rd.YMin, rd.YMax, rd.ZMin, rd.ZMax} {
			buf = binary.AppendUvarint(buf, uint64(v))
		}
		return buf, nil

	case *GameData:
		payload, err := json.Marshal(m.Blocks)
		if err != nil {
			return nil, fmt.Errorf("сериализация игровых данных: %w", err)
		}
		return append(buf, payload...), nil

	case *ChunkUpdate:
		buf = binary.AppendVarint(buf, int64(m.Pos.X))
		buf = binary.AppendVarint(buf, int64(m.Pos.Y))
		buf = binary.AppendVarint(buf, int64(m.Pos.Z))
		buf = binary.AppendUvarint(buf, m.Version)

		blocks := zstdEncoder.EncodeAll(appendRLEBlocks(nil, m.Blocks), nil)
		buf = binary.AppendUvarint(buf, uint64(len(blocks)))
		buf = append(buf, blocks...)

		light := zstdEncoder.EncodeAll(appendRLELight(nil, m.Light), nil)
		buf = binary.AppendUvarint(buf, uint64(len(light)))
		buf = append(buf, light...)
		return buf, nil

	default:
		return nil, fmt.Errorf("неизвестный тип сообщения %T", msg)
	}
}

// Decode разбирает сообщение из байтового представления
func Decode(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("пустое сообщение")
	}
	msgType := MessageType(data[0])
	payload := data[1:]

	switch msgType {
	case MsgSetPos:
		if len(payload) != 24 {
			return nil, fmt.Errorf("SetPos: ожидалось 24 байта, получено %d", len(payload))
		}
		return &SetPos{Pos: vec.Vec3Float{
			X: readFloat64(payload[0:8]),
			Y: readFloat64(payload[8:16]),
			Z: readFloat64(payload[16:24]),
		}}, nil

	case MsgSetRenderDistance:
		var vals [6]int
		for i := range vals {
			v, n := binary.Uvarint(payload)
			if n <= 0 {
				return nil, fmt.Errorf("SetRenderDistance: повреждённое поле %d", i)
			}
			vals[i] = int(v)
			payload = payload[n:]
		}
		return &SetRenderDistance{RenderDistance: world.RenderDistance{
			XMin: vals[0], XMax: vals[1],
			YMin: vals[2], YMax: vals[3],
			ZMin: vals[4], ZMax: vals[5],
		}}, nil

	case MsgGameData:
		msg := &GameData{}
		if err := json.Unmarshal(payload, &msg.Blocks); err != nil {
			return nil, fmt.Errorf("разбор игровых данных: %w", err)
		}
		return msg, nil

	case MsgChunkUpdate:
		msg := &ChunkUpdate{}
		var pos [3]int64
		for i := range pos {
			v, n := binary.Varint(payload)
			if n <= 0 {
				return nil, fmt.Errorf("ChunkUpdate: повреждённая позиция")
			}
			pos[i] = v
			payload = payload[n:]
		}
		msg.Pos = vec.Vec3{X: int(pos[0]), Y: int(pos[1]), Z: int(pos[2])}

		version, n := binary.Uvarint(payload)
		if n <= 0 {
			return nil, fmt.Errorf("ChunkUpdate: повреждённая версия")
		}
		msg.Version = version
		payload = payload[n:]

		blocksRaw, payload, err := readCompressedSection(payload)
		if err != nil {
			return nil, fmt.Errorf("ChunkUpdate: секция блоков: %w", err)
		}
		if msg.Blocks, err = decodeRLEBlocks(blocksRaw); err != nil {
			return nil, err
		}

		lightRaw, _, err := readCompressedSection(payload)
		if err != nil {
			return nil, fmt.Errorf("ChunkUpdate: секция света: %w", err)
		}
		if msg.Light, err = decodeRLELight(lightRaw); err != nil {
			return nil, err
		}
		return msg, nil

	default:
		return nil, fmt.Errorf("неизвестный тип сообщения %d", msgType)
	}
}

// readCompressedSection читает uvarint-длину и распаковывает zstd-блок
func readCompressedSection(payload []byte) ([]byte, []byte, error) {
	size, n := binary.Uvarint(payload)
	if n <= 0 {
		return nil, nil, fmt.Errorf("повреждённая длина секции")
	}
	payload = payload[n:]
	if uint64(len(payload)) < size {
		return nil, nil, fmt.Errorf("секция оборвана: нужно %d байт, есть %d", size, len(payload))
	}
	raw, err := zstdDecoder.DecodeAll(payload[:size], nil)
	if err != nil {
		return nil, nil, fmt.Errorf("распаковка zstd: %w", err)
	}
	return raw, payload[size:], nil
}

func appendFloat64(dst []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
}

func readFloat64(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}
