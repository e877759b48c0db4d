package engine

import (
	"frame_master/internal/errs"
	"frame_master/internal/pool"
	"frame_master/internal/registry"
	"frame_master/msg"
)

// NewPool 在 arena 的 [base, base+count) 上构建 pool，注册并追加描述符。
// infoFrame 为 msg.SelfHosted 时位图放在 base 起始的帧里，infoFrames 忽略；
// 否则位图放在绝对帧号 infoFrame 起的 infoFrames 个帧里（通常属于别的 pool，
// 调用方应先从那个 pool GetFrames 出来）。
func (a *Arena) NewPool(base, count, infoFrame, infoFrames uint64) (*pool.Pool, error) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	if a.data == nil {
		return nil, errs.ErrClosed
	}
	p, err := a.buildPool(base, count, infoFrame, infoFrames, true)
	if err != nil {
		return nil, err
	}
	if err := a.appendDesc(p); err != nil {
		return nil, err
	}
	return p, nil
}

// buildPool 解析位图所在的 arena 字节区并构建 pool。create 为 false 时
// 走 Attach，不清空既有位图（重放描述符日志用）。
func (a *Arena) buildPool(base, count, infoFrame, infoFrames uint64, create bool) (*pool.Pool, error) {
	if count == 0 {
		return nil, errs.ErrBadArgument
	}
	if base+count > a.frameCount {
		return nil, errs.ErrOutOfRange
	}
	var off, ln uint64
	if infoFrame == msg.SelfHosted {
		n := pool.NeededInfoFrames(count)
		off = base << msg.FrameShift
		ln = n * msg.FrameSize
	} else {
		if infoFrames == 0 {
			return nil, errs.ErrBadArgument
		}
		if infoFrame+infoFrames > a.frameCount {
			return nil, errs.ErrOutOfRange
		}
		off = infoFrame << msg.FrameShift
		ln = infoFrames * msg.FrameSize
	}
	bitmap := a.data[off : off+ln : off+ln]
	var p *pool.Pool
	var err error
	if create {
		p, err = pool.New(base, count, infoFrame, infoFrames, bitmap)
	} else {
		p, err = pool.Attach(base, count, infoFrame, infoFrames, bitmap)
	}
	if err != nil {
		return nil, err
	}
	a.reg.Add(p)
	return p, nil
}

// Alloc 在指定 pool 中分配 n 个连续帧。ok=false 表示空闲不足或碎片化。
func (a *Arena) Alloc(p *pool.Pool, n uint64) (uint64, bool) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	if a.data == nil {
		return 0, false
	}
	return p.GetFrames(n)
}

// Reserve 把 pool 内 [base, base+n) 保留为不可用（硬件/固件区）。
func (a *Arena) Reserve(p *pool.Pool, base, n uint64) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	if a.data == nil {
		return errs.ErrClosed
	}
	return p.MarkInaccessible(base, n)
}

// Release 只凭帧号释放：经 registry 定位归属 pool 再回收整个序列。
func (a *Arena) Release(frame uint64) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	if a.data == nil {
		return errs.ErrClosed
	}
	_, err := a.reg.Release(frame)
	return err
}

// RunData 返回从 frame 起 n 个帧对应的字节区（mmap 内的切片）。
func (a *Arena) RunData(frame, n uint64) ([]byte, error) {
	a.lifeMu.RLock()
	defer a.lifeMu.RUnlock()
	if a.data == nil {
		return nil, errs.ErrClosed
	}
	if n == 0 || frame+n > a.frameCount {
		return nil, errs.ErrOutOfRange
	}
	off := frame << msg.FrameShift
	end := off + n*msg.FrameSize
	return a.data[off:end:end], nil
}

// FrameData 返回单个帧的字节区。
func (a *Arena) FrameData(frame uint64) ([]byte, error) {
	return a.RunData(frame, 1)
}

// Registry 返回底层 registry（供测试断言）
func (a *Arena) Registry() *registry.Registry { return a.reg }

// FrameCount 返回 arena 的帧总数。
func (a *Arena) FrameCount() uint64 { return a.frameCount }
