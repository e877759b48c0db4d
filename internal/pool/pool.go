package pool

import (
	"frame_master/internal/errs"
	"frame_master/internal/state"
	"frame_master/msg"
)

// Pool 管理一段连续物理帧 [base, base+frameCount)，状态记在 2bit 位图里。
// 位图本身也放在帧中：自托管时占用本 pool 起始处的若干帧，
// 外部托管时落在别的 pool 已分配的帧里。
type Pool struct {
	base       uint64
	frameCount uint64
	freeCount  uint64

	infoFrame  uint64 // msg.SelfHosted 表示自托管
	infoFrames uint64

	bitmap []byte
}

// NeededInfoFrames 表示 n 帧状态所需的信息帧数。
// 密度为 state.PerByte（4 态/字节，2 bit 编码）。n 为 0 时返回 0。
func NeededInfoFrames(n uint64) uint64 {
	per := state.PerByte * msg.FrameSize
	return (n + per - 1) / per
}

// New 在 bitmap 上构建并初始化 frame pool，所有帧先置 Free。
// infoFrame 为 msg.SelfHosted 时位图自托管：自身占用的信息帧通过
// 与 MarkInaccessible 相同的标记原语保留，不走特殊路径。
// 外部托管时信息帧通常在别的 pool 里，只有与本 pool 重叠的部分才标记。
func New(base, frameCount, infoFrame, infoFrames uint64, bitmap []byte) (*Pool, error) {
	p, err := prepare(base, frameCount, infoFrame, infoFrames, bitmap)
	if err != nil {
		return nil, err
	}
	p.freeCount = frameCount
	for i := uint64(0); i < frameCount; i++ {
		state.Write(bitmap, i, state.Free)
	}
	if p.infoFrame == msg.SelfHosted {
		if err := p.MarkInaccessible(p.base, p.infoFrames); err != nil {
			return nil, err
		}
		return p, nil
	}
	lo, hi := p.infoFrame, p.infoFrame+p.infoFrames
	if lo < p.base {
		lo = p.base
	}
	if hi > p.base+p.frameCount {
		hi = p.base + p.frameCount
	}
	if lo < hi {
		if err := p.MarkInaccessible(lo, hi-lo); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Attach 复用既有位图重建 pool，不清空状态。
// freeCount 由随后的 Recount 重算，重放描述符日志时使用。
func Attach(base, frameCount, infoFrame, infoFrames uint64, bitmap []byte) (*Pool, error) {
	return prepare(base, frameCount, infoFrame, infoFrames, bitmap)
}

func prepare(base, frameCount, infoFrame, infoFrames uint64, bitmap []byte) (*Pool, error) {
	if frameCount == 0 {
		return nil, errs.ErrBadArgument
	}
	if frameCount > uint64(len(bitmap))*state.PerByte {
		return nil, errs.ErrTooManyFrames
	}
	if infoFrame == msg.SelfHosted {
		infoFrames = NeededInfoFrames(frameCount)
	} else if infoFrames == 0 {
		return nil, errs.ErrBadArgument
	}
	return &Pool{
		base:       base,
		frameCount: frameCount,
		infoFrame:  infoFrame,
		infoFrames: infoFrames,
		bitmap:     bitmap,
	}, nil
}

// GetFrames 首次适应查找 n 个连续 Free 帧，返回绝对帧号。
// ok=false 表示 n 为 0、空闲不足或碎片化——属正常结果，此时不改任何状态。
// 扫描覆盖整个范围，含最后一帧。
func (p *Pool) GetFrames(n uint64) (frame uint64, ok bool) {
	if n == 0 || n > p.freeCount {
		return 0, false
	}
	var head, run uint64
	for i := uint64(0); i < p.frameCount; i++ {
		if state.Read(p.bitmap, i) != state.Free {
			run = 0
			continue
		}
		if run == 0 {
			head = i
		}
		run++
		if run == n {
			p.commit(head, n)
			return p.base + head, true
		}
	}
	return 0, false
}

// commit 把 [head, head+n) 落为一个序列：首帧 Head，其余 Allocated。
func (p *Pool) commit(head, n uint64) {
	state.Write(p.bitmap, head, state.Head)
	for i := head + 1; i < head+n; i++ {
		state.Write(p.bitmap, i, state.Allocated)
	}
	p.freeCount -= n
}

// MarkInaccessible 把 [base, base+n) 整段标记为 Inaccessible 并扣减 freeCount。
// base 为绝对帧号，区间必须完整落在 pool 内（上界开区间）。
// Inaccessible 不是 Head，ReleaseAt 会拒绝释放这类保留区。
func (p *Pool) MarkInaccessible(base, n uint64) error {
	if n == 0 {
		return errs.ErrBadArgument
	}
	if base < p.base || base+n > p.base+p.frameCount {
		return errs.ErrOutOfRange
	}
	for i := base - p.base; i < base-p.base+n; i++ {
		if state.Read(p.bitmap, i) == state.Free {
			p.freeCount--
		}
		state.Write(p.bitmap, i, state.Inaccessible)
	}
	return nil
}

// ReleaseAt 释放以 frame 开头的序列，返回释放帧数。
// frame 必须是 Head，否则是重复释放或非法释放，直接失败且不改状态。
// 向后只回收 Allocated 帧，遇到 Free/Head/Inaccessible 或 pool 边界即停。
func (p *Pool) ReleaseAt(frame uint64) (freed uint64, err error) {
	if !p.Contains(frame) {
		return 0, errs.ErrOutOfRange
	}
	i := frame - p.base
	if state.Read(p.bitmap, i) != state.Head {
		return 0, errs.ErrNotHead
	}
	state.Write(p.bitmap, i, state.Free)
	p.freeCount++
	freed = 1
	for j := i + 1; j < p.frameCount && state.Read(p.bitmap, j) == state.Allocated; j++ {
		state.Write(p.bitmap, j, state.Free)
		p.freeCount++
		freed++
	}
	return freed, nil
}

// Recount 重扫位图：重算 freeCount 并校验序列不变量
// （Allocated 帧的前一帧必须是 Head 或 Allocated）。
func (p *Pool) Recount() error {
	var free uint64
	prev := state.Free
	for i := uint64(0); i < p.frameCount; i++ {
		s := state.Read(p.bitmap, i)
		switch s {
		case state.Free:
			free++
		case state.Allocated:
			if prev != state.Head && prev != state.Allocated {
				return errs.ErrCorrupt
			}
		}
		prev = s
	}
	p.freeCount = free
	return nil
}

// Contains 判断绝对帧号是否属于本 pool（上界开区间，越界一帧不算）。
func (p *Pool) Contains(frame uint64) bool {
	return frame >= p.base && frame < p.base+p.frameCount
}

// Base 返回起始帧号（供测试断言）
func (p *Pool) Base() uint64 { return p.base }

// FrameCount 返回帧总数（供测试断言）
func (p *Pool) FrameCount() uint64 { return p.frameCount }

// FreeFrames 返回当前空闲帧数。
func (p *Pool) FreeFrames() uint64 { return p.freeCount }

// InfoFrame 返回位图所在绝对帧号，msg.SelfHosted 表示自托管。
func (p *Pool) InfoFrame() uint64 { return p.infoFrame }

// InfoFrames 返回位图占用的信息帧数。
func (p *Pool) InfoFrames() uint64 { return p.infoFrames }

// State 返回绝对帧号 frame 的当前状态（供测试断言）
func (p *Pool) State(frame uint64) state.State {
	return state.Read(p.bitmap, frame-p.base)
}
