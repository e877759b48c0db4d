package registry

import (
	"sync"

	"frame_master/internal/errs"
	"frame_master/internal/pool"
)

// Registry 按注册顺序保存进程内所有 pool，只增不删。
// 释放方一般只拿着帧号而没有 pool 句柄，靠它把帧号解析回归属 pool。
type Registry struct {
	rw    sync.RWMutex
	pools []*pool.Pool
}

// New 创建空 registry。
func New() *Registry {
	return &Registry{pools: make([]*pool.Pool, 0, 4)}
}

// Add 注册一个 pool。各 pool 的帧区间必须互不重叠，重叠属配置错误，这里不设防。
func (r *Registry) Add(p *pool.Pool) {
	r.rw.Lock()
	r.pools = append(r.pools, p)
	r.rw.Unlock()
}

// Lookup 按注册顺序线性扫描，返回区间包含 frame 的 pool。
func (r *Registry) Lookup(frame uint64) (*pool.Pool, bool) {
	r.rw.RLock()
	defer r.rw.RUnlock()
	for _, p := range r.pools {
		if p.Contains(frame) {
			return p, true
		}
	}
	return nil, false
}

// Release 只凭帧号释放序列：先定位归属 pool，再由其回收，返回释放帧数。
// 没有 pool 认领该帧时返回 ErrNoPool。
func (r *Registry) Release(frame uint64) (uint64, error) {
	p, ok := r.Lookup(frame)
	if !ok {
		return 0, errs.ErrNoPool
	}
	return p.ReleaseAt(frame)
}

// Pools 返回当前 pool 列表（只读）。
func (r *Registry) Pools() []*pool.Pool {
	r.rw.RLock()
	defer r.rw.RUnlock()
	return r.pools
}

// Len 返回已注册的 pool 数。
func (r *Registry) Len() int {
	r.rw.RLock()
	defer r.rw.RUnlock()
	return len(r.pools)
}
