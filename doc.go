// Package raybvh holds the pieces shared by the ray tracing packages under
// rt/: the Logger used by hosts that build scenes.
//
// rt/bvh is the acceleration structure core (per-mesh SAH BVHs, instances
// and the top level TLAS), rt/core the host scene and camera, rt/asset mesh
// loading and procedural scenes, and rt/app the renderer.
package raybvh
