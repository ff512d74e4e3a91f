package geometry

// brickShift is log2 of the brick edge length
const (
	brickShift = 3
	brickSize  = 1 << brickShift // cells per brick edge
	brickMask  = brickSize - 1
	brickCells = brickSize * brickSize * brickSize
)

// morton3 interleaves the low three bits of x, y and z as ...z1y1x1z0y0x0,
// so cells that are close in space land close in the brick's slice.
func morton3(x, y, z int) int {
	return spread3(x) | spread3(y)<<1 | spread3(z)<<2
}

// spread3 moves bit i of v to bit 3i
func spread3(v int) int {
	v &= brickMask
	return (v & 1) | (v&2)<<2 | (v&4)<<4
}
