package state

// State 单帧状态，位图里每帧占 2 bit。
type State uint8

const (
	Free         State = 0 // 可分配
	Head         State = 1 // 已分配序列的首帧（单帧分配也是 Head）
	Allocated    State = 2 // 已分配序列的后续帧
	Inaccessible State = 3 // 带外保留（硬件/元数据区），不参与查找，不可释放
)

// PerByte 每字节容纳的帧状态数。NeededInfoFrames 的密度常量。
const PerByte = 4

const stateBits = 2

// Read 读出位图中第 i 帧的状态。索引合法性由调用方保证。
func Read(bm []byte, i uint64) State {
	shift := (i % PerByte) * stateBits
	return State(bm[i/PerByte] >> shift & 0x3)
}

// Write 把第 i 帧的状态写入位图。
func Write(bm []byte, i uint64, s State) {
	shift := (i % PerByte) * stateBits
	bm[i/PerByte] = bm[i/PerByte]&^(0x3<<shift) | byte(s)<<shift
}

// String 返回状态名，错误信息与报告用。
func (s State) String() string {
	switch s {
	case Free:
		return "FREE"
	case Head:
		return "HEAD"
	case Allocated:
		return "ALLOCATED"
	case Inaccessible:
		return "INACCESSIBLE"
	default:
		return "INVALID"
	}
}
