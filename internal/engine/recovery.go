package engine

import (
	"frame_master/internal/pool"
	"frame_master/internal/record"
	"frame_master/msg"
)

// replayDesc 重放描述符日志，按注册顺序重建所有 pool（不清空位图）。
// 遇到第一条非法记录即停，并把日志截断到停止点。
func (a *Arena) replayDesc() error {
	st, err := a.logf.Stat()
	if err != nil {
		return err
	}
	buf := make([]byte, st.Size())
	if len(buf) > 0 {
		if _, err := a.logf.ReadAt(buf, 0); err != nil {
			return err
		}
	}
	off := 0
	for off+msg.DescSize <= len(buf) {
		d := record.DecodeDesc(buf[off : off+msg.DescSize])
		if d.Magic != msg.Magic || d.Ver != msg.Version || d.Flags != msg.FlagPool {
			break
		}
		if record.CalcCRC(d.Flags, d.BaseFrame, d.FrameCount, d.InfoFrame, d.InfoFrames) != d.CRC32 {
			break
		}
		if _, err := a.buildPool(d.BaseFrame, d.FrameCount, d.InfoFrame, d.InfoFrames, false); err != nil {
			return err
		}
		off += msg.DescSize
	}
	a.logEnd = int64(off)
	if int64(off) != st.Size() {
		if err := a.logf.Truncate(a.logEnd); err != nil {
			return err
		}
	}
	return nil
}

// appendDesc 把 pool 描述符追加到日志并落盘。
func (a *Arena) appendDesc(p *pool.Pool) error {
	d := record.Desc{
		Magic:      msg.Magic,
		Ver:        msg.Version,
		Flags:      msg.FlagPool,
		BaseFrame:  p.Base(),
		FrameCount: p.FrameCount(),
		InfoFrame:  p.InfoFrame(),
		InfoFrames: p.InfoFrames(),
	}
	d.CRC32 = record.CalcCRC(d.Flags, d.BaseFrame, d.FrameCount, d.InfoFrame, d.InfoFrames)
	var buf [msg.DescSize]byte
	record.EncodeDesc(buf[:], d)
	if _, err := a.logf.WriteAt(buf[:], a.logEnd); err != nil {
		return err
	}
	a.logEnd += msg.DescSize
	return a.logf.Sync()
}

// Recover 对每个 pool 重算 freeCount 并校验序列不变量，损坏返回 ErrCorrupt。
func (a *Arena) Recover() error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	for _, p := range a.reg.Pools() {
		if err := p.Recount(); err != nil {
			return err
		}
	}
	return nil
}
