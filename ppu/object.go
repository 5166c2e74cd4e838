package ppu

// object is one OAM entry. Stored Y/X are offset by 16/8 so sprites can hang
// off the top/left edge of the screen.
type object struct {
	oamIndex              int
	y, x, tileIndex, attr uint8
}

func newObject(oam []uint8, index int) object {
	off := index * 4
	return object{
		oamIndex:  index,
		y:         oam[off],
		x:         oam[off+1],
		tileIndex: oam[off+2],
		attr:      oam[off+3],
	}
}

func (o *object) screenY() int {
	return int(o.y) - 16
}

func (o *object) screenX() int {
	return int(o.x) - 8
}

func (o *object) paletteOBP1() bool {
	return o.attr>>4&1 != 0
}

func (o *object) xFlip() bool {
	return o.attr>>5&1 != 0
}

func (o *object) yFlip() bool {
	return o.attr>>6&1 != 0
}

func (o *object) behindBG() bool {
	return o.attr>>7&1 != 0
}

// byXAndOAMIndex orders sprites by priority: smaller X first, OAM index
// breaking ties.
type byXAndOAMIndex []object

func (o byXAndOAMIndex) Len() int {
	return len(o)
}
func (o byXAndOAMIndex) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
}
func (o byXAndOAMIndex) Less(i, j int) bool {
	return o[i].x < o[j].x || (o[i].x == o[j].x && o[i].oamIndex < o[j].oamIndex)
}
