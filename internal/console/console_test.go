package console

import (
	"bytes"
	"testing"

	"nesgo/internal/bus"
	"nesgo/internal/cartridge"
	"nesgo/internal/input"
)

// buildNROMImage assembles a minimal NROM iNES image whose reset vector
// points at a tight JMP-to-self loop, enough to drive a full Console
// end-to-end without a real game ROM.
func buildNROMImage() []byte {
	header := make([]byte, 16)
	copy(header, []byte("NES\x1A"))
	header[4] = 2 // 32 KiB PRG
	header[5] = 1 // 8 KiB CHR

	prg := make([]uint8, 0x8000)
	// Reset vector lives at CPU 0xFFFC/0xFFFD, which maps to the last two
	// bytes of a 32 KiB NROM image loaded at 0x8000.
	prg[0x7FFC] = 0x00
	prg[0x7FFD] = 0x80
	prg[0x0000] = 0x4C // JMP Absolute
	prg[0x0001] = 0x00
	prg[0x0002] = 0x80

	chr := make([]uint8, 0x2000)

	out := make([]byte, 0, len(header)+len(prg)+len(chr))
	out = append(out, header...)
	out = append(out, prg...)
	out = append(out, chr...)
	return out
}

func newTestConsole(t *testing.T) *Console {
	t.Helper()
	cart, err := cartridge.LoadReader(bytes.NewReader(buildNROMImage()))
	if err != nil {
		t.Fatalf("building test cartridge: %v", err)
	}
	return &Console{bus: bus.New(cart)}
}

func TestRunFrameProducesAFullScreenBuffer(t *testing.T) {
	c := newTestConsole(t)
	frame := c.RunFrame()

	const wantLen = 256 * 240 * 3
	if len(frame) != wantLen {
		t.Fatalf("RunFrame() returned %d bytes, want %d", len(frame), wantLen)
	}
}

func TestRunFrameAdvancesOnEachCall(t *testing.T) {
	c := newTestConsole(t)
	c.RunFrame()
	before := c.bus.PPU.FrameCount()
	c.RunFrame()
	after := c.bus.PPU.FrameCount()

	if after != before+1 {
		t.Fatalf("FrameCount went %d -> %d, want exactly +1 per RunFrame call", before, after)
	}
}

func TestSetButtonReachesTheSelectedPort(t *testing.T) {
	c := newTestConsole(t)
	c.SetButton(0, input.A, true)
	c.SetButton(1, input.Start, true)

	c.bus.Controllers[0].Write(0x01)
	c.bus.Controllers[1].Write(0x01)
	if c.bus.Controllers[0].Read()&0x01 == 0 {
		t.Fatalf("controller 0 does not report button A held")
	}
}
