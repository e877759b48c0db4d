package engine

import (
	"os"
	"path/filepath"
	"testing"

	"frame_master/internal/errs"
	"frame_master/internal/fs"
	"frame_master/msg"
)

const testFrames = 4096

func TestOpenCreate(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "mem")
	a, err := Open(base, testFrames)
	if err != nil {
		t.Fatalf("Open create: %v", err)
	}
	defer a.Close()
	st, _ := os.Stat(fs.ArenaPath(base))
	if st == nil {
		t.Fatal("arena file not created")
	}
	want := int64(testFrames * msg.FrameSize)
	if st.Size() != want {
		t.Errorf("arena size: got %d want %d", st.Size(), want)
	}
	if a.FrameCount() != testFrames || a.Registry().Len() != 0 {
		t.Errorf("FrameCount=%d pools=%d", a.FrameCount(), a.Registry().Len())
	}
}

func TestOpenSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "mem")
	a, err := Open(base, testFrames)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	a.Close()
	if _, err := Open(base, testFrames/2); err == nil {
		t.Fatal("expected error for size mismatch")
	}
}

func TestNewPoolSelfHosted(t *testing.T) {
	dir := t.TempDir()
	a, err := Open(filepath.Join(dir, "mem"), testFrames)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()
	p, err := a.NewPool(0, 1024, msg.SelfHosted, 0)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	if p.FreeFrames() != 1023 {
		t.Errorf("free: got %d want 1023", p.FreeFrames())
	}
	frame, ok := a.Alloc(p, 10)
	if !ok || frame != 1 {
		t.Errorf("Alloc: frame=%d ok=%v want frame=1", frame, ok)
	}
	if p.FreeFrames() != 1013 {
		t.Errorf("free after alloc: got %d want 1013", p.FreeFrames())
	}
}

func TestNewPoolOutOfRange(t *testing.T) {
	dir := t.TempDir()
	a, _ := Open(filepath.Join(dir, "mem"), testFrames)
	defer a.Close()
	if _, err := a.NewPool(testFrames-10, 20, msg.SelfHosted, 0); err != errs.ErrOutOfRange {
		t.Errorf("pool beyond arena: want ErrOutOfRange got %v", err)
	}
	if _, err := a.NewPool(0, 100, testFrames-1, 2); err != errs.ErrOutOfRange {
		t.Errorf("info frames beyond arena: want ErrOutOfRange got %v", err)
	}
}

func TestFrameDataWrite(t *testing.T) {
	dir := t.TempDir()
	a, _ := Open(filepath.Join(dir, "mem"), testFrames)
	defer a.Close()
	p, _ := a.NewPool(0, 1024, msg.SelfHosted, 0)
	frame, ok := a.Alloc(p, 2)
	if !ok {
		t.Fatal("Alloc failed")
	}
	data, err := a.RunData(frame, 2)
	if err != nil {
		t.Fatalf("RunData: %v", err)
	}
	if uint64(len(data)) != 2*msg.FrameSize {
		t.Errorf("run len: got %d", len(data))
	}
	copy(data, []byte("hello frames"))
	got, err := a.FrameData(frame)
	if err != nil {
		t.Fatalf("FrameData: %v", err)
	}
	if string(got[:12]) != "hello frames" {
		t.Errorf("frame content: %q", got[:12])
	}
	if _, err := a.RunData(testFrames-1, 2); err != errs.ErrOutOfRange {
		t.Errorf("RunData past arena: want ErrOutOfRange got %v", err)
	}
}

func TestReopenRebuildsPools(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "mem")
	a, err := Open(base, testFrames)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	p1, err := a.NewPool(0, 1024, msg.SelfHosted, 0)
	if err != nil {
		t.Fatalf("NewPool p1: %v", err)
	}
	// p2 的位图托管在 p1 分配出来的帧里
	info, ok := a.Alloc(p1, 1)
	if !ok {
		t.Fatal("alloc info frames")
	}
	p2, err := a.NewPool(1024, 1024, info, 1)
	if err != nil {
		t.Fatalf("NewPool p2: %v", err)
	}
	head, ok := a.Alloc(p2, 10)
	if !ok {
		t.Fatal("alloc in p2")
	}
	keep, ok := a.Alloc(p2, 5)
	if !ok {
		t.Fatal("alloc keep in p2")
	}
	if err := a.Release(keep); err != nil {
		t.Fatalf("Release keep: %v", err)
	}
	freeP1, freeP2 := p1.FreeFrames(), p2.FreeFrames()
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := Open(base, testFrames)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	pools := b.Registry().Pools()
	if len(pools) != 2 {
		t.Fatalf("pools after reopen: got %d want 2", len(pools))
	}
	if pools[0].FreeFrames() != freeP1 || pools[1].FreeFrames() != freeP2 {
		t.Errorf("free after reopen: got %d/%d want %d/%d",
			pools[0].FreeFrames(), pools[1].FreeFrames(), freeP1, freeP2)
	}
	// 分配的序列在重开后仍然可释放
	if err := b.Release(head); err != nil {
		t.Fatalf("Release after reopen: %v", err)
	}
	if pools[1].FreeFrames() != freeP2+10 {
		t.Errorf("free after release: got %d want %d", pools[1].FreeFrames(), freeP2+10)
	}
}

func TestReplayStopsAtGarbage(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "mem")
	a, _ := Open(base, testFrames)
	if _, err := a.NewPool(0, 512, msg.SelfHosted, 0); err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	a.Close()

	// 日志尾部写坏，重放应在坏记录处停下并截断
	f, err := os.OpenFile(fs.RegPath(base), os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	garbage := make([]byte, msg.DescSize)
	for i := range garbage {
		garbage[i] = 0xEE
	}
	f.Write(garbage)
	f.Close()

	b, err := Open(base, testFrames)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	if b.Registry().Len() != 1 {
		t.Errorf("pools: got %d want 1", b.Registry().Len())
	}
	st, _ := os.Stat(fs.RegPath(base))
	if st.Size() != int64(msg.DescSize) {
		t.Errorf("log size after truncate: got %d want %d", st.Size(), msg.DescSize)
	}
}

func TestRecoverCorruptBitmap(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "mem")
	a, _ := Open(base, testFrames)
	if _, err := a.NewPool(0, 512, msg.SelfHosted, 0); err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	a.Close()

	// 位图在 arena 帧 0 的起始处。伪造孤儿 ALLOCATED：
	// 帧 0 INACCESSIBLE(3)、帧 1 FREE(0)、帧 2 ALLOCATED(2) => 0x23
	f, err := os.OpenFile(fs.ArenaPath(base), os.O_RDWR, 0644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	f.WriteAt([]byte{0x23}, 0)
	f.Close()

	if _, err := Open(base, testFrames); err != errs.ErrCorrupt {
		t.Fatalf("reopen corrupt: want ErrCorrupt got %v", err)
	}
}

func TestOpsAfterClose(t *testing.T) {
	dir := t.TempDir()
	a, _ := Open(filepath.Join(dir, "mem"), testFrames)
	p, _ := a.NewPool(0, 512, msg.SelfHosted, 0)
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := a.Alloc(p, 1); ok {
		t.Error("Alloc after close should fail")
	}
	if err := a.Release(1); err != errs.ErrClosed {
		t.Errorf("Release after close: want ErrClosed got %v", err)
	}
	if _, err := a.NewPool(512, 10, msg.SelfHosted, 0); err != errs.ErrClosed {
		t.Errorf("NewPool after close: want ErrClosed got %v", err)
	}
	_ = a.Close()
}
