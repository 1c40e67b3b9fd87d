package graphics

// ShaderStage identifies one programmable pipeline stage.
type ShaderStage int

const (
	VertexStage ShaderStage = iota
	FragmentStage
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}

// Device is the set of GL calls issued against the current context. It is
// passed explicitly so the code issuing draw calls never depends on which
// context happens to be current on the thread.
type Device interface {
	// Init loads the GL entry points. It must be called after the owning
	// Context has been made current.
	Init() error
	Version() string

	ClearColor(r, g, b, a float32)
	Clear()
	Viewport(x, y, width, height int32)

	CreateShader(stage ShaderStage) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	ShaderCompiled(shader uint32) bool
	// ShaderInfoLog returns the complete compile log, however long.
	ShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	ProgramLinked(program uint32) bool
	ProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)

	GenBuffer() uint32
	BindArrayBuffer(vbo uint32)
	// UploadStatic copies data into the bound array buffer with a static
	// usage hint. The buffer size is len(data)*4 bytes.
	UploadStatic(data []float32)
	DeleteBuffer(vbo uint32)

	// VertexAttribPointer declares attribute index as components floats per
	// vertex, stride bytes apart, starting offset bytes into the buffer.
	VertexAttribPointer(index uint32, components, stride int32, offset int)
	EnableVertexAttribArray(index uint32)
	DrawTriangles(first, count int32)

	// CreateFramebuffer allocates an RGBA8 colour target of the given size.
	CreateFramebuffer(width, height int) (uint32, error)
	// BindFramebuffer binds fbo for drawing and reading; 0 is the default
	// framebuffer.
	BindFramebuffer(fbo uint32)
	// ReadPixels reads the bound framebuffer as tightly packed RGBA8 into dst,
	// which must hold width*height*4 bytes.
	ReadPixels(width, height int, dst []byte)
	DeleteFramebuffer(fbo uint32)
}
