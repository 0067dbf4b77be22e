package hal

func rgb565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// rgb888From565 widens each channel by replicating its high bits into the
// low ones, so full scale maps to 255 and zero to zero.
func rgb888From565(p uint16) (r, g, b uint8) {
	rr := uint8(p>>11) & 0x1F
	gg := uint8(p>>5) & 0x3F
	bb := uint8(p) & 0x1F
	return rr<<3 | rr>>2, gg<<2 | gg>>4, bb<<3 | bb>>2
}
