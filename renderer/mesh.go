package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	graphics "github.com/richinsley/gltriangle/graphics"
)

const (
	positionAttrib     = 0
	positionComponents = 3
	floatSize          = 4
)

var triangleVertices = []mgl32.Vec3{
	{-0.5, -0.5, 0.0},
	{0.5, -0.5, 0.0},
	{0.0, 0.5, 0.0},
}

// Mesh is a vertex array plus the single static buffer it reads positions
// from.
type Mesh struct {
	vao    uint32
	vbo    uint32
	count  int32
	device graphics.Device
}

// Stride is the byte distance between consecutive vertices.
func Stride() int32 {
	return positionComponents * floatSize
}

// SizeBytes is the buffer size needed for vertices.
func SizeBytes(vertices []mgl32.Vec3) int {
	return len(vertices) * int(Stride())
}

func flatten(vertices []mgl32.Vec3) []float32 {
	data := make([]float32, 0, len(vertices)*positionComponents)
	for _, v := range vertices {
		data = append(data, v[0], v[1], v[2])
	}
	return data
}

// UploadMesh copies vertices into a new static buffer and declares attribute
// 0 as tightly packed vec3 positions. The vertex array is left bound.
func UploadMesh(dev graphics.Device, vertices []mgl32.Vec3) *Mesh {
	m := &Mesh{count: int32(len(vertices)), device: dev}

	m.vao = dev.GenVertexArray()
	dev.BindVertexArray(m.vao)

	m.vbo = dev.GenBuffer()
	dev.BindArrayBuffer(m.vbo)
	dev.UploadStatic(flatten(vertices))

	dev.VertexAttribPointer(positionAttrib, positionComponents, Stride(), 0)
	dev.EnableVertexAttribArray(positionAttrib)
	return m
}

// Draw issues one triangle-list draw of every vertex.
func (m *Mesh) Draw() {
	m.device.BindVertexArray(m.vao)
	m.device.DrawTriangles(0, m.count)
}

// Release deletes the buffer and vertex array. It is safe to call more than
// once.
func (m *Mesh) Release() {
	if m == nil || m.vao == 0 {
		return
	}
	m.device.DeleteBuffer(m.vbo)
	m.device.DeleteVertexArray(m.vao)
	m.vao, m.vbo = 0, 0
}
