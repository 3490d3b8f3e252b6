// Package fasthdr converts 8-bit PQ-encoded HDR YUV video frames to SDR YUV.
//
// The conversion is a fixed per-pixel chain (YUV decode, inverse PQ, tone map,
// sRGB OETF, YUV encode) that is precomputed once into a complete 3D lookup
// table covering every input triplet. Frames are then streamed through a
// three-stage pipeline (read, process, write) over a fixed pool of buffers,
// so memory stays bounded and throughput follows the slowest stage.
package fasthdr
