package ppu

// spriteCandidate is one OAM entry selected during this scanline's sprite
// evaluation, in OAM scan order (index 0 = highest display priority).
type spriteCandidate struct {
	index            int // OAM sprite number, 0-63; 0 marks the hardware sprite-zero
	y, tile, attr, x uint8
}

// evaluateSprites scans all 64 OAM entries for those visible on scanline y
// (an entry's y byte is delayed one scanline, so it covers
// y+1 <= scanline < y+1+8), keeping the first 8 in scan order and flagging
// overflow if more than 8 overlap.
func (p *PPU) evaluateSprites(y int) []spriteCandidate {
	var candidates []spriteCandidate
	overflow := false
	for s := 0; s < 64; s++ {
		oamY := int(p.oam[s*4])
		top := oamY + 1
		if y < top || y >= top+8 {
			continue
		}
		if len(candidates) < 8 {
			candidates = append(candidates, spriteCandidate{
				index: s,
				y:     p.oam[s*4],
				tile:  p.oam[s*4+1],
				attr:  p.oam[s*4+2],
				x:     p.oam[s*4+3],
			})
		} else {
			overflow = true
		}
	}
	if overflow {
		p.status |= statusOverflow
	}
	return candidates
}

// renderScanline paints one row of 256 pixels into the frame buffer,
// compositing background and sprite pixels per §4.3's per-pixel rule.
func (p *PPU) renderScanline(y int) {
	bgEnabled := p.mask&0x08 != 0
	bgShowLeft := p.mask&0x02 != 0
	spEnabled := p.mask&0x10 != 0
	spShowLeft := p.mask&0x04 != 0

	baseNametable := uint16(0x2000 + uint16(p.ctrl&0x03)*0x400)
	bgPatternOffset := uint16(0)
	if p.ctrl&0x10 != 0 {
		bgPatternOffset = 0x1000
	}
	spPatternOffset := uint16(0)
	if p.ctrl&0x08 != 0 {
		spPatternOffset = 0x1000
	}

	candidates := p.evaluateSprites(y)

	for x := 0; x < 256; x++ {
		bgOpaque, bgR, bgG, bgB := false, uint8(0), uint8(0), uint8(0)
		if bgEnabled && (x >= 8 || bgShowLeft) {
			bgOpaque, bgR, bgG, bgB = p.backgroundPixel(baseNametable, bgPatternOffset, x, y)
		}

		spOpaque, spFront, spIsZero, spR, spG, spB := false, false, false, uint8(0), uint8(0), uint8(0)
		if spEnabled && (x >= 8 || spShowLeft) {
			spOpaque, spFront, spIsZero, spR, spG, spB = p.spritePixel(candidates, spPatternOffset, x, y)
		}

		if spOpaque && bgOpaque && spIsZero {
			p.status |= statusSprite0
		}

		var r, g, b uint8
		switch {
		case spOpaque && bgOpaque:
			if spFront {
				r, g, b = spR, spG, spB
			} else {
				r, g, b = bgR, bgG, bgB
			}
		case spOpaque:
			r, g, b = spR, spG, spB
		case bgOpaque:
			r, g, b = bgR, bgG, bgB
		default:
			r, g, b = rgbOf(p.readPalette(0x3F00))
		}

		idx := (y*256 + x) * 3
		p.screen[idx+0] = b
		p.screen[idx+1] = g
		p.screen[idx+2] = r
	}
}

// backgroundPixel resolves one background pixel per §4.3: tile lookup,
// pattern-table fetch, attribute-table palette selection.
func (p *PPU) backgroundPixel(baseNametable, patternOffset uint16, x, y int) (opaque bool, r, g, b uint8) {
	tileX, tileY := x/8, y/8
	tileIndex := p.busRead(baseNametable + uint16(tileY*32+tileX))

	patternAddr := patternOffset + uint16(tileIndex)*16 + uint16(y%8)
	lo := p.busRead(patternAddr)
	hi := p.busRead(patternAddr + 8)
	bit := uint(7 - x%8)
	colorIdx := ((lo >> bit) & 1) | (((hi >> bit) & 1) << 1)

	attrIndex := (tileY/4)*8 + (tileX / 4)
	attrByte := p.busRead(baseNametable + 0x3C0 + uint16(attrIndex))
	left := tileX%4 < 2
	top := tileY%4 < 2
	var shift uint
	switch {
	case top && left:
		shift = 0
	case top && !left:
		shift = 2
	case !top && left:
		shift = 4
	default:
		shift = 6
	}
	paletteSelect := (attrByte >> shift) & 0x03

	var paletteAddr uint16
	if colorIdx == 0 {
		paletteAddr = 0x3F00
	} else {
		paletteAddr = 0x3F00 + uint16(paletteSelect)*4 + uint16(colorIdx)
	}
	r, g, b = rgbOf(p.readPalette(paletteAddr))
	return colorIdx != 0, r, g, b
}

// spritePixel resolves one sprite pixel at column x, if any candidate
// covers it and is opaque there. Candidates are in scan-order priority:
// the first opaque hit wins.
func (p *PPU) spritePixel(candidates []spriteCandidate, patternOffset uint16, x, y int) (opaque, front, isZero bool, r, g, b uint8) {
	for _, c := range candidates {
		if x < int(c.x) || x >= int(c.x)+8 {
			continue
		}
		row := y - (int(c.y) + 1)
		col := x - int(c.x)
		if c.attr&0x80 != 0 { // vertical flip
			row = 7 - row
		}
		if c.attr&0x40 != 0 { // horizontal flip
			col = 7 - col
		}

		patternAddr := patternOffset + uint16(c.tile)*16 + uint16(row)
		lo := p.busRead(patternAddr)
		hi := p.busRead(patternAddr + 8)
		bit := uint(7 - col)
		colorIdx := ((lo >> bit) & 1) | (((hi >> bit) & 1) << 1)
		if colorIdx == 0 {
			continue // transparent: try the next candidate
		}

		paletteSelect := c.attr & 0x03
		paletteAddr := uint16(0x3F10) + uint16(paletteSelect)*4 + uint16(colorIdx)
		r, g, b = rgbOf(p.readPalette(paletteAddr))
		front = c.attr&0x20 == 0
		isZero = c.index == 0
		return true, front, isZero, r, g, b
	}
	return false, false, false, 0, 0, 0
}
