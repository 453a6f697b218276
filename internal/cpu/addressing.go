package cpu

// AddressingMode identifies how an opcode's operand is located.
type AddressingMode uint8

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	Relative
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndirectX // (zp,X)
	IndirectY // (zp),Y
)

// operand is what addressing-mode resolution produces: either a bus address
// to load from / store to, or (for Accumulator) a flag directing load/store
// at the A register instead. Resolving an operand advances PC past the
// instruction's operand bytes; read-modify-write opcodes reuse the same
// operand for both their load and their store, so the effective address is
// never recomputed and PC is never rewound.
type operand struct {
	addr        uint16
	accumulator bool
	pageCrossed bool
}

// resolve advances PC past mode's operand bytes and returns the effective
// operand. Implied mode consumes no operand bytes and yields a zero operand.
func (c *CPU) resolve(mode AddressingMode) operand {
	switch mode {
	case Implied:
		return operand{}
	case Accumulator:
		return operand{accumulator: true}
	case Immediate:
		addr := c.PC
		c.PC++
		return operand{addr: addr}
	case Relative:
		offset := int8(c.bus.Read(c.PC))
		c.PC++
		target := uint16(int32(c.PC) + int32(offset))
		return operand{addr: target, pageCrossed: (target & 0xFF00) != (c.PC & 0xFF00)}
	case ZeroPage:
		addr := uint16(c.bus.Read(c.PC))
		c.PC++
		return operand{addr: addr}
	case ZeroPageX:
		addr := uint16(uint8(c.bus.Read(c.PC)) + c.X)
		c.PC++
		return operand{addr: addr}
	case ZeroPageY:
		addr := uint16(uint8(c.bus.Read(c.PC)) + c.Y)
		c.PC++
		return operand{addr: addr}
	case Absolute:
		addr := c.readWordAt(c.PC)
		c.PC += 2
		return operand{addr: addr}
	case AbsoluteX:
		base := c.readWordAt(c.PC)
		c.PC += 2
		addr := base + uint16(c.X)
		return operand{addr: addr, pageCrossed: (base & 0xFF00) != (addr & 0xFF00)}
	case AbsoluteY:
		base := c.readWordAt(c.PC)
		c.PC += 2
		addr := base + uint16(c.Y)
		return operand{addr: addr, pageCrossed: (base & 0xFF00) != (addr & 0xFF00)}
	case Indirect:
		ptr := c.readWordAt(c.PC)
		c.PC += 2
		return operand{addr: c.readWordBug(ptr)}
	case IndirectX:
		zp := uint8(c.bus.Read(c.PC)) + c.X
		c.PC++
		return operand{addr: c.readWordZeroPage(zp)}
	case IndirectY:
		zp := uint8(c.bus.Read(c.PC))
		c.PC++
		base := c.readWordZeroPage(zp)
		addr := base + uint16(c.Y)
		return operand{addr: addr, pageCrossed: (base & 0xFF00) != (addr & 0xFF00)}
	default:
		panic("cpu: addressing-mode misuse: unknown mode")
	}
}

// readWordAt reads a little-endian word from two consecutive bus addresses.
func (c *CPU) readWordAt(addr uint16) uint16 {
	lo := uint16(c.bus.Read(addr))
	hi := uint16(c.bus.Read(addr + 1))
	return lo | hi<<8
}

// readWordZeroPage reads a little-endian word from the zero page, wrapping
// the high-byte fetch within the zero page.
func (c *CPU) readWordZeroPage(addr uint8) uint16 {
	lo := uint16(c.bus.Read(uint16(addr)))
	hi := uint16(c.bus.Read(uint16(addr + 1)))
	return lo | hi<<8
}

// readWordBug reproduces the 6502 JMP (indirect) page-wrap bug: the high
// byte of the target is fetched from (ptr & 0xFF00) | ((ptr+1) & 0x00FF),
// never crossing into the next page.
func (c *CPU) readWordBug(ptr uint16) uint16 {
	lo := uint16(c.bus.Read(ptr))
	hiAddr := (ptr & 0xFF00) | ((ptr + 1) & 0x00FF)
	hi := uint16(c.bus.Read(hiAddr))
	return lo | hi<<8
}

// load reads the operand's value, either from A (Accumulator mode) or from
// the bus at op.addr. Used by every instruction that reads its operand.
func (c *CPU) load(op operand) uint8 {
	if op.accumulator {
		return c.A
	}
	return c.bus.Read(op.addr)
}

// store writes v to the operand's location. Used by every instruction that
// writes a result. Storing to an Immediate or Relative operand is a
// programming error in the opcode table, never reached at runtime.
func (c *CPU) store(op operand, v uint8) {
	if op.accumulator {
		c.A = v
		return
	}
	c.bus.Write(op.addr, v)
}
