package diesel2d

import "unsafe"

// QuadVertex is the composite pipeline's vertex layout: a clip-space
// position at offset 0 and a texture coordinate at offset 8.
type QuadVertex struct {
	Pos [2]float32
	UV  [2]float32
}

const quadVertexStride = uint32(unsafe.Sizeof(QuadVertex{}))

// Full-screen quad with a top-left texture origin.
var (
	quadVertices = []QuadVertex{
		{Pos: [2]float32{-1, -1}, UV: [2]float32{0, 0}},
		{Pos: [2]float32{1, -1}, UV: [2]float32{1, 0}},
		{Pos: [2]float32{1, 1}, UV: [2]float32{1, 1}},
		{Pos: [2]float32{-1, 1}, UV: [2]float32{0, 1}},
	}
	quadIndices = []uint16{0, 1, 2, 2, 3, 0}
)
