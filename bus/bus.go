// Package bus breaks the dependency cycles between the hardware blocks: each
// component registers itself here and reaches the others through small
// interfaces instead of importing their packages.
package bus

type IRQ interface {
	Request(src int)
	Clear(src int)
	IF() uint8
	SetIF(val uint8)
	IE() uint8
	SetIE(val uint8)
	Pending() uint8
	HighestPending() (int, bool)
}

type MMU interface {
	Get8(addr uint16) uint8
	Get16(addr uint16) uint16
	Set8(addr uint16, val uint8)
	Set16(addr uint16, val uint16)
}

type PPU interface {
	GetVRAM8(off uint16) uint8
	SetVRAM8(off uint16, val uint8)
	GetOAM8(off uint16) uint8
	SetOAM8(off uint16, val uint8)

	Mode() uint8
	LCDEnabled() bool

	LCDC() uint8
	STAT() uint8
	SCY() uint8
	SCX() uint8
	LY() uint8
	LYC() uint8
	BGP() uint8
	OBP0() uint8
	OBP1() uint8
	WY() uint8
	WX() uint8

	SetLCDC(val uint8)
	SetSTAT(val uint8)
	SetSCY(val uint8)
	SetSCX(val uint8)
	SetLYC(val uint8)
	SetBGP(val uint8)
	SetOBP0(val uint8)
	SetOBP1(val uint8)
	SetWY(val uint8)
	SetWX(val uint8)
}

type Timer interface {
	DIV() uint8
	TIMA() uint8
	TMA() uint8
	TAC() uint8
	ResetDIV()
	SetTIMA(val uint8)
	SetTMA(val uint8)
	SetTAC(val uint8)
}

type Serial interface {
	SB() uint8
	SetSB(val uint8)
	SC() uint8
	SetSC(val uint8)
}

type Joypad interface {
	Get() uint8
	Set(val uint8)
}

type Bus struct {
	IRQ
	MMU
	PPU
	Timer
	Serial
	Joypad
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Register(irq IRQ, mmu MMU, ppu PPU, timer Timer, serial Serial, joypad Joypad) {
	b.IRQ = irq
	b.MMU = mmu
	b.PPU = ppu
	b.Timer = timer
	b.Serial = serial
	b.Joypad = joypad
}
