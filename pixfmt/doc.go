// Package pixfmt converts between the canonical in-memory color sequence
// used by anydisplay and the packed native formats of display panels.
//
// A frame is a sequence of colors, one per physical pixel, already in the
// panel's addressing order. Encoding never looks at coordinates; it only
// packs the sequence:
//
//	Mono1     8 pixels per byte, most significant bit first
//	Gray4     2 pixels per byte, high nibble first
//	Gray8     1 byte per pixel
//	RGB565    2 bytes per pixel, big endian
//	RGB888    3 bytes per pixel, R G B
//	RGBA8888  4 bytes per pixel, R G B A, not premultiplied
//
// Formats without an alpha channel composite the color over black, which is
// what an unlit LED or OLED pixel looks like.
//
// Memory layout example for Gray4 and a 4-pixel sequence:
//
//	Pixels: 0  1  2  3
//	Values: 5  10 3  12
//	Bytes:  0x5A     0x3C
//
// The package also provides Gray4Color, a 4-bit grayscale color, and
// HorizontalNibble, the Gray4 layout used by SSD1322 class controllers.
// Partial updates of such a frame are cut with HorizontalNibble.Region.
package pixfmt
