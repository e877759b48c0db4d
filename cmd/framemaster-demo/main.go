package main

import (
	"fmt"
	"os"
	"path/filepath"

	"frame_master"
)

type Player struct {
	ID   uint64
	HP   uint32
	MP   uint32
	Name [32]byte
}

func NewPlayer(id uint64, hp, mp uint32, name string) *Player {
	p := Player{ID: id, HP: hp, MP: mp}
	copy(p.Name[:], []byte(name))
	return &p
}

func main() {
	dir, err := os.MkdirTemp("", "framemaster")
	if err != nil {
		fmt.Println("tempdir:", err)
		return
	}
	defer os.RemoveAll(dir)

	m, err := frame_master.Open(filepath.Join(dir, "frames.data"), 4096)
	if err != nil {
		fmt.Println("open:", err)
		return
	}
	defer m.Close()

	// 前半 arena：自托管 pool
	kernel, err := m.NewPool(0, 2048, frame_master.SelfHosted, 0)
	if err != nil {
		fmt.Println("new kernel pool:", err)
		return
	}
	fmt.Println("kernel pool free:", kernel.Free())

	// 后半 arena：位图托管在 kernel pool 的帧里
	infoFrames := frame_master.NeededInfoFrames(2048)
	info, ok := kernel.Alloc(infoFrames)
	if !ok {
		fmt.Println("alloc info frames failed")
		return
	}
	process, err := m.NewPool(2048, 2048, info, infoFrames)
	if err != nil {
		fmt.Println("new process pool:", err)
		return
	}

	// 模拟固件保留区
	if err := process.Reserve(2048+500, 20); err != nil {
		fmt.Println("reserve:", err)
		return
	}

	frames := make([]uint64, 0, 100)
	for i := 0; i < 100; i++ {
		f, err := frame_master.AllocFixed(process, NewPlayer(uint64(i), uint32(i), uint32(i), fmt.Sprintf("player%d", i)))
		if err != nil {
			fmt.Println("alloc fixed:", err)
			return
		}
		frames = append(frames, f)
	}

	for i, f := range frames {
		got, err := frame_master.ViewFixed[Player](m, f)
		if err != nil {
			fmt.Println("view fixed:", err)
			return
		}
		if i < 3 {
			fmt.Println(got.ID, got.HP, string(got.Name[:]))
		}
	}

	for _, f := range frames {
		if err := m.Release(f); err != nil {
			fmt.Println("release:", err)
			return
		}
	}
	fmt.Println("process pool free:", process.Free())
}
