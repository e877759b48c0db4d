package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frame_master/msg"
)

func TestDescRoundTrip(t *testing.T) {
	d := Desc{
		Magic:      msg.Magic,
		Ver:        msg.Version,
		Flags:      msg.FlagPool,
		BaseFrame:  2048,
		FrameCount: 1 << 20,
		InfoFrame:  17,
		InfoFrames: 16,
	}
	d.CRC32 = CalcCRC(d.Flags, d.BaseFrame, d.FrameCount, d.InfoFrame, d.InfoFrames)

	var buf [msg.DescSize]byte
	EncodeDesc(buf[:], d)
	got := DecodeDesc(buf[:])
	require.Equal(t, d, got)
	assert.Equal(t, got.CRC32, CalcCRC(got.Flags, got.BaseFrame, got.FrameCount, got.InfoFrame, got.InfoFrames))
}

func TestCalcCRCDetectsFieldChange(t *testing.T) {
	crc := CalcCRC(msg.FlagPool, 0, 1024, 0, 0)
	assert.NotEqual(t, crc, CalcCRC(msg.FlagPool, 1, 1024, 0, 0))
	assert.NotEqual(t, crc, CalcCRC(msg.FlagPool, 0, 1025, 0, 0))
}
