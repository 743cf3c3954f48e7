package main

// gridPoint represents an integer coordinate on the simulation grid.
type gridPoint struct {
	x int
	y int
	z int
}

// clampCoord constrains v to lie within the inclusive [min, max] range.
func clampCoord(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// flatIndex maps an in-range coordinate onto x-fastest storage.
func flatIndex(x, y, z, nx, ny int) int {
	return x + y*nx + z*nx*ny
}
