package ppu

import (
	"testing"

	"nesgo/internal/cartridge"
)

// fakeCart is a minimal ppu.Cartridge: flat CHR RAM and a fixed mirroring
// mode, enough to drive the PPU in isolation.
type fakeCart struct {
	chr    [0x2000]uint8
	mirror cartridge.Mirror
}

func (c *fakeCart) ReadCHR(addr uint16) uint8         { return c.chr[addr&0x1FFF] }
func (c *fakeCart) WriteCHR(addr uint16, value uint8) { c.chr[addr&0x1FFF] = value }
func (c *fakeCart) Mirroring() cartridge.Mirror       { return c.mirror }

func newTestPPU(mirror cartridge.Mirror) (*PPU, *fakeCart) {
	cart := &fakeCart{mirror: mirror}
	p := New(cart)
	p.Reset()
	return p, cart
}

func TestPPUCTRLMaskRoundTrip(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.WriteRegister(0, 0xFF)
	if p.ctrl != 0xFF {
		t.Fatalf("ctrl = 0x%02X, want 0xFF", p.ctrl)
	}
	p.WriteRegister(1, 0x1E)
	if p.mask != 0x1E {
		t.Fatalf("mask = 0x%02X, want 0x1E", p.mask)
	}
}

// TestPPUSTATUSClearsVBlankAndResetsLatch is the §8 testable property: a
// PPUSTATUS read clears bit 7 and resets the address/scroll write latch.
func TestPPUSTATUSClearsVBlankAndResetsLatch(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.status |= statusVBlank
	p.addrLatchHigh = false // pretend one byte of an PPUADDR/PPUSCROLL pair was written

	v := p.ReadRegister(2)

	if v&statusVBlank == 0 {
		t.Fatalf("PPUSTATUS read returned 0 VBlank bit, want it set on the read that observes it")
	}
	if p.status&statusVBlank != 0 {
		t.Fatalf("VBlank bit not cleared after PPUSTATUS read")
	}
	if !p.addrLatchHigh {
		t.Fatalf("write latch not reset to high after PPUSTATUS read")
	}
}

func TestPPUDATABufferedReadBelowPalette(t *testing.T) {
	p, cart := newTestPPU(cartridge.MirrorHorizontal)
	cart.chr[0x0010] = 0x42

	p.WriteRegister(6, 0x00) // PPUADDR high
	p.WriteRegister(6, 0x10) // PPUADDR low -> 0x0010 (pattern table / CHR)

	first := p.ReadRegister(7)
	if first != 0 {
		t.Fatalf("first PPUDATA read = 0x%02X, want 0 (stale buffer)", first)
	}
	second := p.ReadRegister(7)
	if second != 0x42 {
		t.Fatalf("second PPUDATA read = 0x%02X, want 0x42", second)
	}
}

func TestPPUDATAIncrementsByVRAMStep(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.WriteRegister(0, 0x04) // PPUCTRL: +32 per access
	p.WriteRegister(6, 0x20)
	p.WriteRegister(6, 0x00) // vramAddr = 0x2000

	p.WriteRegister(7, 0xAA)
	if p.vramAddr != 0x2020 {
		t.Fatalf("vramAddr = 0x%04X, want 0x2020 after a +32 write", p.vramAddr)
	}
}

func TestNametableMirroringVertical(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorVertical)
	p.writeNametable(0x2000, 0x11) // logical 0
	p.writeNametable(0x2800, 0x22) // logical 2, shares physical bank 0 with logical 0 under vertical mirroring

	if p.nametables[0][0] != 0x22 {
		t.Fatalf("vertical mirroring: logical nametables 0 and 2 should share physical bank 0")
	}
}

func TestNametableMirroringHorizontal(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.writeNametable(0x2000, 0x11) // logical 0
	p.writeNametable(0x2400, 0x22) // logical 1, shares physical bank 0 with logical 0 under horizontal mirroring

	if p.nametables[0][0] != 0x22 {
		t.Fatalf("horizontal mirroring: logical nametables 0 and 1 should share physical bank 0")
	}
}

func TestOAMDMALoadsStartingAtOAMADDR(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	p.WriteRegister(3, 0x10) // OAMADDR = 0x10

	var page [256]uint8
	for i := range page {
		page[i] = uint8(i)
	}
	p.SetOAM(page)

	if p.oam[0x10] != 0x00 {
		t.Fatalf("oam[0x10] = 0x%02X, want 0x00 (first DMA byte)", p.oam[0x10])
	}
	if p.oam[0x00] != 0xF0 {
		t.Fatalf("oam[0x00] = 0x%02X, want 0xF0 (DMA wrapped past 0xFF)", p.oam[0x00])
	}
}

func TestFrameCountAdvancesOncePerFrame(t *testing.T) {
	p, _ := newTestPPU(cartridge.MirrorHorizontal)
	if p.FrameCount() != 0 {
		t.Fatalf("FrameCount = %d before any ticks, want 0", p.FrameCount())
	}

	// One full frame is 262 scanlines * 114 PPU cycles = 29868 PPU cycles,
	// i.e. 9956 CPU cycles (3 PPU cycles per CPU cycle).
	p.Tick(9956)

	if p.FrameCount() != 1 {
		t.Fatalf("FrameCount = %d after one frame's worth of cycles, want 1", p.FrameCount())
	}
}
