// Package grid models the pieces of a finite-difference grid chunk that the
// polarization core depends on: field components and their principal
// directions, the point layout of a chunk with its ghost layer and strides,
// and the per-component field tables the solver owns.
//
// Components are ordered field-type major (E, H, D, B) and direction minor
// (x, y, z, r, p):
//
//	c := grid.E.Component(grid.Y) // Ey
//	c.Direction()                  // grid.Y
//	grid.DirectionComponent(c, grid.Z) // Ez
//
// A [Volume] always stores one ghost layer along each active axis.
// [Volume.LoopOwned] visits owned points only, so stencils that reach one
// stride in any direction stay inside the allocation.
package grid
