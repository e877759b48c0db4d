package record

import (
	"encoding/binary"
	"hash/crc32"
)

// Desc pool 描述符（magic/version/flags/range/info/crc），
// 每构建一个 pool 追加一条到描述符日志，重开时按序重放。
type Desc struct {
	Magic      uint32
	Ver        uint16
	Flags      uint16
	BaseFrame  uint64
	FrameCount uint64
	InfoFrame  uint64
	InfoFrames uint64
	CRC32      uint32
}

// DecodeDesc 从 data 解码一条描述符。
func DecodeDesc(data []byte) Desc {
	return Desc{
		Magic:      binary.LittleEndian.Uint32(data[0:4]),
		Ver:        binary.LittleEndian.Uint16(data[4:6]),
		Flags:      binary.LittleEndian.Uint16(data[6:8]),
		BaseFrame:  binary.LittleEndian.Uint64(data[8:16]),
		FrameCount: binary.LittleEndian.Uint64(data[16:24]),
		InfoFrame:  binary.LittleEndian.Uint64(data[24:32]),
		InfoFrames: binary.LittleEndian.Uint64(data[32:40]),
		CRC32:      binary.LittleEndian.Uint32(data[40:44]),
	}
}

// EncodeDesc 将 d 编码到 b（至少 DescSize 字节）。
func EncodeDesc(b []byte, d Desc) {
	binary.LittleEndian.PutUint32(b[0:4], d.Magic)
	binary.LittleEndian.PutUint16(b[4:6], d.Ver)
	binary.LittleEndian.PutUint16(b[6:8], d.Flags)
	binary.LittleEndian.PutUint64(b[8:16], d.BaseFrame)
	binary.LittleEndian.PutUint64(b[16:24], d.FrameCount)
	binary.LittleEndian.PutUint64(b[24:32], d.InfoFrame)
	binary.LittleEndian.PutUint64(b[32:40], d.InfoFrames)
	binary.LittleEndian.PutUint32(b[40:44], d.CRC32)
}

// CalcCRC 计算描述符 CRC（与 DecodeDesc 约定一致）。
func CalcCRC(flags uint16, baseFrame, frameCount, infoFrame, infoFrames uint64) uint32 {
	var tmp [2 + 8 + 8 + 8 + 8]byte
	binary.LittleEndian.PutUint16(tmp[0:2], flags)
	binary.LittleEndian.PutUint64(tmp[2:10], baseFrame)
	binary.LittleEndian.PutUint64(tmp[10:18], frameCount)
	binary.LittleEndian.PutUint64(tmp[18:26], infoFrame)
	binary.LittleEndian.PutUint64(tmp[26:34], infoFrames)
	c := crc32.NewIEEE()
	_, _ = c.Write(tmp[:])
	return c.Sum32()
}
