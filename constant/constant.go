package constant

const (
	DIR_RIGHT, ACT_A    = 0x00, 0x00
	DIR_LEFT, ACT_B     = 0x01, 0x01
	DIR_UP, ACT_SELECT  = 0x02, 0x02
	DIR_DOWN, ACT_START = 0x03, 0x03

	LCD_WIDTH    = 160
	LCD_HEIGHT   = 144
	BG_PX_WIDTH  = 256
	BG_PX_HEIGHT = 256

	// One scanline is 456 ticks: 80 (OAM scan) + 172..289 (pixel transfer) +
	// the remaining H-Blank. 144 visible lines plus 10 V-Blank lines per frame.
	SCANLINE_TICKS = 456
	FRAME_LINES    = 154
	FRAME_TICKS    = SCANLINE_TICKS * FRAME_LINES

	CPU_HZ = 4194304
	FPS    = float64(CPU_HZ) / FRAME_TICKS // ~59.7

	WINDOW_SCALE  = 4
	WINDOW_WIDTH  = LCD_WIDTH * WINDOW_SCALE
	WINDOW_HEIGHT = LCD_HEIGHT * WINDOW_SCALE
	WINDOW_TITLE  = "emu-gb"

	COLOR_WHITE      = 0xff
	COLOR_LIGHT_GRAY = 0xcc
	COLOR_DARK_GRAY  = 0x44
	COLOR_BLACK      = 0x00
)
