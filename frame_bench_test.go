package frame_master

import (
	"path/filepath"
	"testing"
)

func mustOpenBench(b *testing.B, frames uint64) *Master {
	b.Helper()
	m, err := Open(filepath.Join(b.TempDir(), "bench"), frames)
	if err != nil {
		b.Fatalf("Open: %v", err)
	}
	return m
}

func BenchmarkAllocRelease(b *testing.B) {
	m := mustOpenBench(b, 1<<16)
	defer m.Close()
	p, err := m.NewPool(0, 1<<16, SelfHosted, 0)
	if err != nil {
		b.Fatalf("NewPool: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f, ok := p.Alloc(8)
		if !ok {
			b.Fatal("Alloc failed")
		}
		if err := m.Release(f); err != nil {
			b.Fatalf("Release: %v", err)
		}
	}
}

func BenchmarkAllocReleaseFragmented(b *testing.B) {
	m := mustOpenBench(b, 1<<16)
	defer m.Close()
	p, err := m.NewPool(0, 1<<16, SelfHosted, 0)
	if err != nil {
		b.Fatalf("NewPool: %v", err)
	}
	// 打散前半区，逼迫查找走得更深
	var heads []uint64
	for i := 0; i < 2048; i++ {
		f, ok := p.Alloc(4)
		if !ok {
			b.Fatal("warmup alloc")
		}
		heads = append(heads, f)
	}
	for i := 0; i < len(heads); i += 2 {
		if err := m.Release(heads[i]); err != nil {
			b.Fatalf("warmup release: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f, ok := p.Alloc(8)
		if !ok {
			b.Fatal("Alloc failed")
		}
		if err := m.Release(f); err != nil {
			b.Fatalf("Release: %v", err)
		}
	}
}

func BenchmarkNeededInfoFrames(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = NeededInfoFrames(uint64(i))
	}
}
