// Package console assembles a cartridge and a bus into a runnable NES
// session: load a ROM, step whole frames, and feed in controller state.
package console

import (
	"nesgo/internal/bus"
	"nesgo/internal/cartridge"
	"nesgo/internal/input"
)

// Console owns one cartridge session's Bus and runs it a frame at a time.
type Console struct {
	bus *bus.Bus
}

// Load parses romPath as an iNES image and constructs a Console ready to
// run. Errors here (bad header, unsupported mapper) are fatal per §7.
func Load(romPath string) (*Console, error) {
	cart, err := cartridge.Load(romPath)
	if err != nil {
		return nil, err
	}
	return &Console{bus: bus.New(cart)}, nil
}

// RunFrame steps the CPU/PPU until one additional frame has rendered and
// returns the 256x240 BGR24 frame buffer. The returned slice aliases the
// PPU's internal buffer and is only valid until the next call to RunFrame.
func (c *Console) RunFrame() []uint8 {
	target := c.bus.PPU.FrameCount() + 1
	for c.bus.PPU.FrameCount() < target {
		c.bus.Step()
	}
	return c.bus.PPU.Screen()
}

// SetButton updates controller port (0 or 1) button state for the next
// frame's worth of reads.
func (c *Console) SetButton(port int, b input.Button, pressed bool) {
	if port < 0 || port > 1 {
		return
	}
	c.bus.Controllers[port].SetButton(b, pressed)
}

// Reset reinitializes the whole console to its power-up state.
func (c *Console) Reset() { c.bus.Reset() }
