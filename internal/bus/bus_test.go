package bus

import (
	"bytes"
	"testing"

	"nesgo/internal/cartridge"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	prg := make([]uint8, 0x8000)
	chr := make([]uint8, 0x2000)
	data := buildNROMImage(prg, chr)
	cart, err := cartridge.LoadReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("building test cartridge: %v", err)
	}
	return New(cart)
}

func TestRAMMirroring(t *testing.T) {
	b := newTestBus(t)
	b.Write(0x0000, 0x42)

	for _, mirror := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		if got := b.Read(mirror); got != 0x42 {
			t.Fatalf("Read(0x%04X) = 0x%02X, want 0x42 (RAM mirror)", mirror, got)
		}
	}
}

func TestOAMDMAStallsCPUAndLoadsOAM(t *testing.T) {
	b := newTestBus(t)
	b.ram[0x100] = 0xAB // page 1, byte 0

	b.totalCycles = 0 // even, so DMA costs 513
	b.triggerOAMDMA(0x01)

	if b.dmaStallCycles != 513 {
		t.Fatalf("dmaStallCycles = %d, want 513 on an even cycle count", b.dmaStallCycles)
	}
	if b.PPU.ReadRegister(4) != 0xAB {
		// OAMADDR is 0 by default, so OAMDATA read returns oam[0].
		t.Fatalf("OAMDATA = 0x%02X after DMA from page 1, want 0xAB", b.PPU.ReadRegister(4))
	}
}

func TestOAMDMACostsExtraCycleOnOddTotal(t *testing.T) {
	b := newTestBus(t)
	b.totalCycles = 1 // odd
	b.triggerOAMDMA(0x01)

	if b.dmaStallCycles != 514 {
		t.Fatalf("dmaStallCycles = %d, want 514 on an odd cycle count", b.dmaStallCycles)
	}
}

// buildNROMImage builds a tiny in-memory iNES image for tests that need a
// real Cartridge behind the bus.
func buildNROMImage(prg, chr []uint8) []byte {
	header := make([]byte, 16)
	copy(header, []byte("NES\x1A"))
	header[4] = uint8(len(prg) / 0x4000)
	header[5] = uint8(len(chr) / 0x2000)

	out := make([]byte, 0, len(header)+len(prg)+len(chr))
	out = append(out, header...)
	out = append(out, prg...)
	out = append(out, chr...)
	return out
}
