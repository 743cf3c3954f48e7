package main

import "strings"

// Grid is a dense lattice of nodes covering the simulated volume at one
// instant, plus the half-step counter of that instant.
type Grid struct {
	nx, ny, nz int
	nodes      []Node
	timeStep   int
}

// Resize allocates nx*ny*nz nodes at rest in air and sets the counter.
// Previous storage is dropped. All dimensions must be positive.
func (g *Grid) Resize(nx, ny, nz, timeStep int) {
	g.nx, g.ny, g.nz = nx, ny, nz
	g.timeStep = timeStep
	g.nodes = make([]Node, nx*ny*nz)
	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				g.nodes[flatIndex(x, y, z, nx, ny)] = Node{
					x: x, y: y, z: z,
					Density: airDensity,
					Speed:   airSoundSpeed,
				}
			}
		}
	}
}

// Source overwrites the node at n's coordinates with n. Coordinates are
// clamped the same way Node clamps them.
func (g *Grid) Source(n Node) {
	dst := g.Node(n.x, n.y, n.z)
	n.x, n.y, n.z = dst.x, dst.y, dst.z
	*dst = n
}

// Node returns the node at (x, y, z). Coordinates outside the grid are
// clamped to the nearest edge on each axis, so edge nodes read themselves
// in place of missing neighbors.
func (g *Grid) Node(x, y, z int) *Node {
	x = clampCoord(x, 0, g.nx-1)
	y = clampCoord(y, 0, g.ny-1)
	z = clampCoord(z, 0, g.nz-1)
	return &g.nodes[flatIndex(x, y, z, g.nx, g.ny)]
}

// UpdateVelocity advances every velocity sample from the pressure grid p.
// ratio is time step over spacing.
func (g *Grid) UpdateVelocity(p *Grid, ratio float64) {
	g.timeStep = p.timeStep + 1
	for i := range g.nodes {
		g.nodes[i].updateVelocity(p, ratio)
	}
}

// UpdatePressure advances every pressure sample from the velocity grid v.
// ratio is time step over spacing.
func (g *Grid) UpdatePressure(v *Grid, ratio float64) {
	g.timeStep = v.timeStep + 1
	for i := range g.nodes {
		g.nodes[i].updatePressure(v, ratio)
	}
}

// Text renders the pressures of slice z, one row per y.
func (g *Grid) Text(z int) string {
	var sb strings.Builder
	for y := 0; y < g.ny; y++ {
		for x := 0; x < g.nx; x++ {
			sb.WriteString(g.Node(x, y, z).text())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Time is the counter in whole physical steps. Pressure and velocity
// updates each take one count per step.
func (g *Grid) Time() int {
	return g.timeStep / 2
}

// TimeStep returns the raw half-step counter.
func (g *Grid) TimeStep() int {
	return g.timeStep
}

// Dims returns the node counts per axis.
func (g *Grid) Dims() (nx, ny, nz int) {
	return g.nx, g.ny, g.nz
}

// Len is the number of live nodes.
func (g *Grid) Len() int {
	return len(g.nodes)
}

// Pressures calls fn for every node, x fastest, then y, then z.
func (g *Grid) Pressures(fn func(x, y, z int, p float64)) {
	for i := range g.nodes {
		n := &g.nodes[i]
		fn(n.x, n.y, n.z, n.Pressure)
	}
}
