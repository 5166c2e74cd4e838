// Package interrupt holds the IF/IE bitsets shared by every peripheral.
// The master-enable flip-flop is NOT here: only CPU opcodes toggle it, so it
// lives on the CPU.
package interrupt

// Interrupt sources in priority order (0 is serviced first).
const (
	VBlank = iota
	LCDStat
	Timer
	Serial
	Joypad
	NumSources
)

// Vector returns the fixed jump target for a source.
func Vector(src int) uint16 {
	return 0x0040 + uint16(src)*8
}

type Controller struct {
	request, enable uint8
}

func NewController() *Controller {
	return &Controller{}
}

// Request sets the pending bit for src. Peripherals call this; the CPU clears
// the bit when it services the interrupt.
func (c *Controller) Request(src int) {
	c.request |= 1 << src
}

func (c *Controller) Clear(src int) {
	c.request &^= 1 << src
}

// IF returns the request register as the CPU sees it: the unused upper bits
// read back as 1.
func (c *Controller) IF() uint8 {
	return 0xe0 | c.request
}

func (c *Controller) SetIF(val uint8) {
	c.request = val & 0x1f
}

func (c *Controller) IE() uint8 {
	return c.enable
}

func (c *Controller) SetIE(val uint8) {
	c.enable = val
}

// Pending returns the sources that are both requested and enabled.
func (c *Controller) Pending() uint8 {
	return c.request & c.enable & 0x1f
}

// HighestPending returns the highest-priority pending source.
func (c *Controller) HighestPending() (int, bool) {
	pending := c.Pending()
	for src := 0; src < NumSources; src++ {
		if pending&(1<<src) != 0 {
			return src, true
		}
	}
	return 0, false
}
