package ppu

// tileDataOff returns the VRAM offset of one tile row for the current tile
// addressing mode: unsigned from 0x8000, or signed from 0x9000.
func (ppu *PPU) tileDataOff(tileNo uint8, row int) int {
	if ppu.lcdc&lcdcTileData != 0 {
		return int(tileNo)*16 + row*2
	}
	return 0x1000 + int(int8(tileNo))*16 + row*2
}

func (ppu *PPU) tileRowPixel(dataOff, bit int) uint8 {
	lsb := ppu.vram[dataOff] >> bit & 1
	msb := ppu.vram[dataOff+1] >> bit & 1
	return msb<<1 | lsb
}

// renderScanline composites background, window, and sprites for the current
// line directly into the frame. Runs once per line at the end of pixel
// transfer.
func (ppu *PPU) renderScanline() {
	y := int(ppu.ly)
	line := ppu.frame.pix[y*LCD_WIDTH : (y+1)*LCD_WIDTH]

	// Raw palette indices of the BG/window layer; sprite priority is decided
	// against these, not the palette-mapped shades.
	var bgIdx [LCD_WIDTH]uint8

	if ppu.lcdc&lcdcBGEnable != 0 {
		mapBase := 0x1800
		if ppu.lcdc&lcdcBGMap != 0 {
			mapBase = 0x1c00
		}
		bgY := uint8(y) + ppu.scy // wraps around the 256px background
		rowBase := mapBase + int(bgY/8)*32
		for x := 0; x < LCD_WIDTH; x++ {
			bgX := uint8(x) + ppu.scx
			tileNo := ppu.vram[rowBase+int(bgX/8)]
			idx := ppu.tileRowPixel(ppu.tileDataOff(tileNo, int(bgY%8)), int(7-bgX%8))
			bgIdx[x] = idx
			line[x] = ppu.bgp >> (2 * idx) & 3
		}
	} else {
		for x := 0; x < LCD_WIDTH; x++ {
			bgIdx[x] = 0
			line[x] = 0
		}
	}

	if ppu.windowOnLine() {
		mapBase := 0x1800
		if ppu.lcdc&lcdcWinMap != 0 {
			mapBase = 0x1c00
		}
		winY := ppu.winLine
		rowBase := mapBase + winY/8*32
		startX := int(ppu.wx) - 7
		covered := false
		for x := startX; x < LCD_WIDTH; x++ {
			if x < 0 {
				continue
			}
			winX := x - startX
			tileNo := ppu.vram[rowBase+winX/8]
			idx := ppu.tileRowPixel(ppu.tileDataOff(tileNo, winY%8), 7-winX%8)
			bgIdx[x] = idx
			line[x] = ppu.bgp >> (2 * idx) & 3
			covered = true
		}
		// The window keeps its own line counter: it only advances on lines
		// where the overlay was actually drawn.
		if covered {
			ppu.winLine++
		}
	}

	if ppu.lcdc&lcdcOBJEnable != 0 {
		h := ppu.objHeight()
		// Lowest-priority sprites first so higher-priority ones overdraw.
		for i := len(ppu.lineObjs) - 1; i >= 0; i-- {
			o := &ppu.lineObjs[i]
			row := y - o.screenY()
			if o.yFlip() {
				row = h - 1 - row
			}
			tileNo := o.tileIndex
			if h == 16 {
				tileNo &= 0xfe // 8x16 sprites ignore the low index bit
			}
			dataOff := int(tileNo)*16 + row*2
			pal := ppu.obp0
			if o.paletteOBP1() {
				pal = ppu.obp1
			}
			for px := 0; px < 8; px++ {
				x := o.screenX() + px
				if x < 0 || x >= LCD_WIDTH {
					continue
				}
				bit := 7 - px
				if o.xFlip() {
					bit = px
				}
				idx := ppu.tileRowPixel(dataOff, bit)
				if idx == 0 {
					continue // transparent
				}
				if o.behindBG() && bgIdx[x] != 0 {
					continue
				}
				line[x] = pal >> (2 * idx) & 3
			}
		}
	}
}
