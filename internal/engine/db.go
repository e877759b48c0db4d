package engine

import (
	"fmt"
	"os"
	"sync"

	"frame_master/internal/errs"
	"frame_master/internal/fs"
	"frame_master/internal/mmap"
	"frame_master/internal/registry"
	"frame_master/msg"
)

// Arena 把一个 mmap 文件当作一段物理内存：帧号即文件内的槽位下标。
// 多个 pool 各管一段互不重叠的帧区间，位图就落在 arena 的帧里，
// 所以"pool 的位图放在它自己管的帧中"是字面成立的。
type Arena struct {
	lifeMu  sync.RWMutex
	writeMu sync.Mutex

	base       string
	frameCount uint64

	f    *os.File
	data []byte

	logf   *os.File // pool 描述符日志
	logEnd int64

	reg *registry.Registry
}

// Open 打开或创建 arena。base 为文件路径前缀，frameCount 为帧总数。
// 已存在的 arena 会重放描述符日志重建 pool，并从位图重算空闲帧数。
func Open(base string, frameCount uint64) (*Arena, error) {
	if frameCount == 0 {
		return nil, errs.ErrBadArgument
	}
	size := int64(frameCount * msg.FrameSize)
	path := fs.ArenaPath(base)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.Size() == 0 {
		if err := f.Truncate(size); err != nil {
			_ = f.Close()
			return nil, err
		}
	} else if st.Size() != size {
		_ = f.Close()
		return nil, fmt.Errorf("arena size mismatch: %s", path)
	}
	data, err := mmap.Map(f.Fd(), int(size))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	logf, err := os.OpenFile(fs.RegPath(base), os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		_ = mmap.Unmap(data)
		_ = f.Close()
		return nil, err
	}
	a := &Arena{
		base:       base,
		frameCount: frameCount,
		f:          f,
		data:       data,
		logf:       logf,
		reg:        registry.New(),
	}
	if err := a.replayDesc(); err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := a.Recover(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// Close msync 后解除映射并关闭文件。重复 Close 安全。
func (a *Arena) Close() error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	a.lifeMu.Lock()
	defer a.lifeMu.Unlock()
	if a.data != nil {
		if err := mmap.Sync(a.data); err != nil {
			return err
		}
		if err := mmap.Unmap(a.data); err != nil {
			return err
		}
		a.data = nil
	}
	if a.f != nil {
		if err := a.f.Close(); err != nil {
			return err
		}
		a.f = nil
	}
	if a.logf != nil {
		if err := a.logf.Close(); err != nil {
			return err
		}
		a.logf = nil
	}
	return nil
}
