package util

import "frame_master/msg"

// CeilDiv 向上取整除法。
func CeilDiv(a, b uint64) uint64 {
	return (a + b - 1) / b
}

// FramesFor 容纳 n 字节所需的帧数。
func FramesFor(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return CeilDiv(n, msg.FrameSize)
}
