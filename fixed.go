package frame_master

import (
	"frame_master/internal/errs"
	"frame_master/internal/fixed"
	"frame_master/util"
)

// AllocFixed 为无指针类型 T 分配足够的连续帧并写入 *v 的字节镜像，
// 返回序列首帧号。空间不足返回 ErrNoSpace。
func AllocFixed[T any](p *Pool, v *T) (uint64, error) {
	if p == nil || p.m == nil || p.m.e == nil {
		return 0, errs.ErrClosed
	}
	n := util.FramesFor(fixed.SizeOf[T]())
	if n == 0 {
		n = 1
	}
	frame, ok := p.Alloc(n)
	if !ok {
		return 0, errs.ErrNoSpace
	}
	data, err := p.m.e.RunData(frame, n)
	if err != nil {
		return 0, err
	}
	if err := fixed.Place(data, v); err != nil {
		_ = p.m.Release(frame)
		return 0, err
	}
	return frame, nil
}

// ViewFixed 从 frame 起始处读出一个 T。
func ViewFixed[T any](m *Master, frame uint64) (*T, error) {
	if m == nil || m.e == nil {
		return nil, errs.ErrClosed
	}
	n := util.FramesFor(fixed.SizeOf[T]())
	if n == 0 {
		n = 1
	}
	data, err := m.e.RunData(frame, n)
	if err != nil {
		return nil, err
	}
	return fixed.View[T](data)
}
