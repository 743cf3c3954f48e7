package main

import "github.com/cpmech/gosl/io"

// Node is one sample point of a Grid. Its coordinates are fixed when the
// owning grid is sized; density and speed are kept per node although the
// medium is currently uniform air.
type Node struct {
	x, y, z int

	Pressure   float64
	Vx, Vy, Vz float64
	Density    float64 // kg/m3
	Speed      float64 // m/s
}

// Pos returns the node's grid coordinates.
func (n *Node) Pos() (x, y, z int) {
	return n.x, n.y, n.z
}

// newImpulse builds a node carrying only a pressure value at (x, y, z).
func newImpulse(x, y, z int, pressure float64) Node {
	return Node{x: x, y: y, z: z, Pressure: pressure}
}

// updateVelocity recomputes the velocity components from the companion
// pressure grid. A velocity sample sits half a cell in the positive
// direction from the pressure sample with the same index, so the pressures
// on either side of it are at k and k+1:
//
//	Pk            Pk+1
//	  <<<<< Vk >>>>>
func (n *Node) updateVelocity(prev *Grid, ratio float64) {
	f := ratio / n.Density
	p := prev.Node(n.x, n.y, n.z)
	n.Vx = p.Vx - f*(prev.Node(n.x+1, n.y, n.z).Pressure-p.Pressure)
	n.Vy = p.Vy - f*(prev.Node(n.x, n.y+1, n.z).Pressure-p.Pressure)
	n.Vz = p.Vz - f*(prev.Node(n.x, n.y, n.z+1).Pressure-p.Pressure)
}

// updatePressure recomputes the pressure from the companion velocity grid.
// A pressure sample sits half a cell in the negative direction from the
// velocity sample with the same index, so the velocities on either side of
// it are at k-1 and k:
//
//	Vk-1            Vk
//	  <<<<< Pk >>>>>
func (n *Node) updatePressure(prev *Grid, ratio float64) {
	f := n.Density * n.Speed * n.Speed * ratio
	p := prev.Node(n.x, n.y, n.z)
	n.Pressure = p.Pressure - f*(p.Vx-prev.Node(n.x-1, n.y, n.z).Vx+
		p.Vy-prev.Node(n.x, n.y-1, n.z).Vy+
		p.Vz-prev.Node(n.x, n.y, n.z-1).Vz)
}

// text formats the pressure to a fixed width with two significant digits.
func (n *Node) text() string {
	return io.Sf("%8.2g", n.Pressure)
}
