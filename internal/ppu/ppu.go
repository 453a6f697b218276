// Package ppu implements the NES Picture Processing Unit: its
// memory-mapped register interface and a scanline-granular renderer that
// produces 256x240 BGR24 frames.
package ppu

import "nesgo/internal/cartridge"

const (
	cyclesPerScanline = 114
	lastScanline      = 261

	statusOverflow = 1 << 5
	statusSprite0  = 1 << 6
	statusVBlank   = 1 << 7
)

// Cartridge is the PPU's view of the cartridge: pattern-table (CHR) access
// and the mirroring mode the mapper currently selects.
type Cartridge interface {
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
	Mirroring() cartridge.Mirror
}

// PPU is the NES picture processing unit.
type PPU struct {
	cart Cartridge

	ctrl    uint8
	mask    uint8
	status  uint8
	oamAddr uint8
	oam     [256]uint8

	addrLatchHigh bool // true: next PPUSCROLL/PPUADDR write is the first (high/X) of the pair
	vramAddr      uint16
	scrollX       uint8
	scrollY       uint8
	readBuffer    uint8

	nametables [4][1024]uint8
	paletteRAM [32]uint8

	scanline      int
	cycleAcc      uint64
	frameComplete bool
	frameCount    uint64
	screen        [256 * 240 * 3]uint8

	nmiCallback func()
}

// New constructs a PPU wired to cart. Call Reset before the first Tick.
func New(cart Cartridge) *PPU {
	p := &PPU{cart: cart, addrLatchHigh: true}
	return p
}

// SetNMICallback registers the function invoked when the PPU enters VBlank
// with NMI-on-VBlank (PPUCTRL bit 7) enabled.
func (p *PPU) SetNMICallback(cb func()) { p.nmiCallback = cb }

// Reset returns the PPU to its power-up state.
func (p *PPU) Reset() {
	p.ctrl, p.mask, p.status = 0, 0, 0
	p.oamAddr = 0
	p.addrLatchHigh = true
	p.vramAddr, p.scrollX, p.scrollY, p.readBuffer = 0, 0, 0, 0
	p.scanline, p.cycleAcc = 0, 0
	p.frameComplete = false
	p.frameCount = 0
}

// Screen returns the 256x240 BGR24 frame buffer, valid for the host to read
// while FrameComplete is true.
func (p *PPU) Screen() []uint8 { return p.screen[:] }

// FrameComplete reports whether a full frame has been rendered since the
// last time scanline 0 began.
func (p *PPU) FrameComplete() bool { return p.frameComplete }

// FrameCount returns the number of frames fully rendered since Reset.
func (p *PPU) FrameCount() uint64 { return p.frameCount }

// SetOAM bulk-overwrites OAM with 256 bytes, starting at the current
// OAMADDR, as performed by a CPU-side OAM DMA transfer.
func (p *PPU) SetOAM(data [256]uint8) {
	for i := 0; i < 256; i++ {
		p.oam[uint8(int(p.oamAddr)+i)] = data[i]
	}
}

// ReadRegister reads PPU register reg (0-7, already masked by the host from
// the CPU address). Indices above 7 are a programming error.
func (p *PPU) ReadRegister(reg uint16) uint8 {
	switch reg {
	case 0, 1, 3, 5, 6:
		// Write-only registers: open-bus approximation, the low 5 bits of
		// PPUSTATUS, matching the teacher's choice (spec leaves this
		// implementation-defined).
		return p.status & 0x1F
	case 2:
		v := p.status
		p.status &^= statusVBlank
		p.addrLatchHigh = true
		return v
	case 4:
		return p.oam[p.oamAddr]
	case 7:
		return p.readPPUData()
	default:
		panic("ppu: register index out of range")
	}
}

// WriteRegister writes value to PPU register reg (0-7). Indices above 7 are
// a programming error.
func (p *PPU) WriteRegister(reg uint16, value uint8) {
	switch reg {
	case 0:
		p.ctrl = value
	case 1:
		p.mask = value
	case 2:
		// PPUSTATUS is read-only; writes are ignored.
	case 3:
		p.oamAddr = value
	case 4:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5:
		p.writeScroll(value)
	case 6:
		p.writeAddr(value)
	case 7:
		p.writePPUData(value)
	default:
		panic("ppu: register index out of range")
	}
}

func (p *PPU) writeScroll(value uint8) {
	if p.addrLatchHigh {
		p.scrollX = value
	} else {
		p.scrollY = value
	}
	p.addrLatchHigh = !p.addrLatchHigh
}

func (p *PPU) writeAddr(value uint8) {
	if p.addrLatchHigh {
		p.vramAddr = (p.vramAddr & 0x00FF) | uint16(value)<<8
	} else {
		p.vramAddr = (p.vramAddr & 0xFF00) | uint16(value)
	}
	p.addrLatchHigh = !p.addrLatchHigh
}

func (p *PPU) vramStep() uint16 {
	if p.ctrl&0x04 != 0 {
		return 32
	}
	return 1
}

func (p *PPU) readPPUData() uint8 {
	addr := p.vramAddr & 0x3FFF
	var result uint8
	if addr < 0x3F00 {
		result = p.readBuffer
		p.readBuffer = p.busRead(addr)
	} else {
		result = p.busRead(addr)
		p.readBuffer = p.busRead(addr)
	}
	p.vramAddr += p.vramStep()
	return result
}

func (p *PPU) writePPUData(value uint8) {
	p.busWrite(p.vramAddr&0x3FFF, value)
	p.vramAddr += p.vramStep()
}

// busRead/busWrite implement the PPU's own 0x0000-0x3FFF address space:
// cartridge CHR, the four nametables (mirrored per cartridge), and palette
// RAM, each mirrored per §3's invariants.
func (p *PPU) busRead(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return p.cart.ReadCHR(addr)
	case addr < 0x3F00:
		return p.readNametable(addr)
	default:
		return p.readPalette(addr)
	}
}

func (p *PPU) busWrite(addr uint16, value uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.cart.WriteCHR(addr, value)
	case addr < 0x3F00:
		p.writeNametable(addr, value)
	default:
		p.writePalette(addr, value)
	}
}

func (p *PPU) nametableSlot(addr uint16) (table int, offset uint16) {
	if addr >= 0x3000 {
		addr -= 0x1000
	}
	logical := int((addr >> 10) & 3)
	return p.physicalNametable(logical), addr & 0x3FF
}

// physicalNametable routes a logical nametable index (0-3, selected by the
// two high address bits) to the physical 1 KiB bank that backs it, per the
// cartridge's mirroring mode.
func (p *PPU) physicalNametable(logical int) int {
	switch p.cart.Mirroring() {
	case cartridge.MirrorVertical:
		return logical & 1
	case cartridge.MirrorHorizontal:
		return (logical >> 1) & 1
	case cartridge.MirrorSingleLower:
		return 0
	case cartridge.MirrorSingleUpper:
		return 1
	default: // four-screen
		return logical
	}
}

func (p *PPU) readNametable(addr uint16) uint8 {
	table, off := p.nametableSlot(addr)
	return p.nametables[table][off]
}

func (p *PPU) writeNametable(addr uint16, value uint8) {
	table, off := p.nametableSlot(addr)
	p.nametables[table][off] = value
}

func (p *PPU) readPalette(addr uint16) uint8 {
	return p.paletteRAM[addr&0x1F]
}

func (p *PPU) writePalette(addr uint16, value uint8) {
	p.paletteRAM[addr&0x1F] = value
}

// Tick advances the PPU by 3 PPU cycles per CPU cycle consumed, rendering
// whole scanlines as each one's cycle budget is exhausted.
func (p *PPU) Tick(cpuCycles uint64) {
	p.cycleAcc += cpuCycles * 3
	for p.cycleAcc >= cyclesPerScanline {
		p.cycleAcc -= cyclesPerScanline
		p.advanceScanline()
	}
}

func (p *PPU) advanceScanline() {
	if p.scanline == 0 {
		p.frameComplete = false
	}

	switch {
	case p.scanline >= 0 && p.scanline < 240:
		p.renderScanline(p.scanline)
	case p.scanline == 241:
		p.status |= statusVBlank
		if p.ctrl&0x80 != 0 && p.nmiCallback != nil {
			p.nmiCallback()
		}
	case p.scanline == lastScanline:
		p.status &^= statusVBlank | statusSprite0 | statusOverflow
		p.frameComplete = true
		p.frameCount++
	}

	p.scanline++
	if p.scanline > lastScanline {
		p.scanline = 0
	}
}
