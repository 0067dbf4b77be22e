// Package quarkgl is the small software 3D engine that draws the AR scene.
//
// It knows nothing about sessions or tracking: it takes a camera, a light and a
// flat list of meshes with world matrices, and rasterizes them into a Target.
//
// Pipeline (fixed):
//
//	Draw list → Model/View/Projection → Clipping → Rasterization → Target.
//
// Cameras either derive their matrices from Position/Target/Up (auto update) or
// carry world and projection matrices supplied verbatim by a tracker. The second
// mode is what an AR frame loop uses: the device pose is authoritative and must
// never be recomposed from Euler state.
//
// Matrices are column-major, m[col*4+row], matching the layout tracking runtimes
// hand out as flat float arrays.
package quarkgl
