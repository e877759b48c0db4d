package msg

// Frame Const
const (
	FrameSize  = uint64(4096) // 帧大小（字节），所有 pool 与调用方共用
	FrameShift = 12
)

// Descriptor Const
const (
	Magic    = uint32(0x4D524650) // 'PFRM' 随便选
	Version  = uint16(1)
	FlagPool = uint16(1)
	DescSize = 4 + 2 + 2 + 8 + 8 + 8 + 8 + 4 // 44 bytes
)

// SelfHosted infoFrame 取 0 时表示位图放在 pool 自己的帧里。
const SelfHosted = uint64(0)
