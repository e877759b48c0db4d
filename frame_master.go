package frame_master

import (
	"frame_master/internal/engine"
	"frame_master/internal/errs"
	"frame_master/internal/pool"
	"frame_master/msg"
)

// 对外暴露的 sentinel errors，便于调用方 errors.Is。
var (
	ErrBadArgument   = errs.ErrBadArgument
	ErrTooManyFrames = errs.ErrTooManyFrames
	ErrOutOfRange    = errs.ErrOutOfRange
	ErrNotHead       = errs.ErrNotHead
	ErrNoPool        = errs.ErrNoPool
	ErrNoSpace       = errs.ErrNoSpace
	ErrClosed        = errs.ErrClosed
	ErrCorrupt       = errs.ErrCorrupt
)

// FrameSize 帧大小（字节），所有 pool 与调用方共用的外部常量。
const FrameSize = msg.FrameSize

// SelfHosted 传给 NewPool 的 infoFrame，表示位图放在 pool 自己的帧里。
const SelfHosted = msg.SelfHosted

// Allocator 面向单个 pool 的分配接口。
type Allocator interface {
	Alloc(n uint64) (frame uint64, ok bool)
	Reserve(base, n uint64) error
}

// Master 把一个 arena 文件当作物理内存，管着其上的全部 frame pool。
type Master struct {
	e *engine.Arena
}

// Open 打开或创建 arena。base 为文件路径前缀，frameCount 为帧总数。
func Open(base string, frameCount uint64) (*Master, error) {
	e, err := engine.Open(base, frameCount)
	if err != nil {
		return nil, err
	}
	return &Master{e: e}, nil
}

func (m *Master) Close() error {
	if m == nil || m.e == nil {
		return nil
	}
	return m.e.Close()
}

// NewPool 在 [base, base+count) 上构建 pool。infoFrame 为 SelfHosted 时
// 位图自托管且 infoFrames 忽略；否则位图放在绝对帧号 infoFrame 起的
// infoFrames 个帧里（先从托管 pool 把这些帧分配出来）。
func (m *Master) NewPool(base, count, infoFrame, infoFrames uint64) (*Pool, error) {
	if m == nil || m.e == nil {
		return nil, errs.ErrClosed
	}
	p, err := m.e.NewPool(base, count, infoFrame, infoFrames)
	if err != nil {
		return nil, err
	}
	return &Pool{m: m, p: p}, nil
}

// Release 只凭帧号释放一个序列。frame 必须是某次 Alloc 返回的首帧。
func (m *Master) Release(frame uint64) error {
	if m == nil || m.e == nil {
		return errs.ErrClosed
	}
	return m.e.Release(frame)
}

// FrameData 返回 frame 对应的 4KiB 字节区，直接落在 mmap 上。
func (m *Master) FrameData(frame uint64) ([]byte, error) {
	if m == nil || m.e == nil {
		return nil, errs.ErrClosed
	}
	return m.e.FrameData(frame)
}

// NeededInfoFrames 表示 n 帧状态所需的信息帧数（纯函数，无需 pool）。
func NeededInfoFrames(n uint64) uint64 {
	return pool.NeededInfoFrames(n)
}

// Pool 单个 frame pool 的句柄。分配请求直接发给具体 pool，
// 释放则走 Master.Release，不需要句柄。
type Pool struct {
	m *Master
	p *pool.Pool
}

// Alloc 首次适应分配 n 个连续帧，返回绝对帧号。
// ok=false 表示空闲不足或碎片化，属正常结果而非错误。
func (p *Pool) Alloc(n uint64) (frame uint64, ok bool) {
	if p == nil || p.m == nil || p.m.e == nil {
		return 0, false
	}
	return p.m.e.Alloc(p.p, n)
}

// Reserve 把 [base, base+n) 保留为不可用（硬件/固件区），之后不可释放。
func (p *Pool) Reserve(base, n uint64) error {
	if p == nil || p.m == nil || p.m.e == nil {
		return errs.ErrClosed
	}
	return p.m.e.Reserve(p.p, base, n)
}

// Free 返回当前空闲帧数。
func (p *Pool) Free() uint64 {
	if p == nil || p.p == nil {
		return 0
	}
	return p.p.FreeFrames()
}

// Base 返回起始帧号。
func (p *Pool) Base() uint64 {
	if p == nil || p.p == nil {
		return 0
	}
	return p.p.Base()
}

// Count 返回帧总数。
func (p *Pool) Count() uint64 {
	if p == nil || p.p == nil {
		return 0
	}
	return p.p.FrameCount()
}
