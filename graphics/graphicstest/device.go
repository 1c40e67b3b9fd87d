package graphicstest

import (
	"strings"

	graphics "github.com/richinsley/gltriangle/graphics"
)

// Shader is a fake shader object.
type Shader struct {
	Stage    graphics.ShaderStage
	Source   string
	Compiled bool
	Log      string
	Deleted  bool
}

// Program is a fake program object.
type Program struct {
	Attached []uint32
	Linked   bool
	Deleted  bool
}

// Attrib is a declared vertex attribute layout.
type Attrib struct {
	Components int32
	Stride     int32
	Offset     int
	Enabled    bool
}

// CompileFunc decides whether source compiles and what log it produces.
type CompileFunc func(stage graphics.ShaderStage, source string) (ok bool, log string)

// Device is a fake GL device. Object names are allocated from a single
// counter starting at 1, so 0 never names a live object.
type Device struct {
	Rec     *Recorder
	InitErr error
	// Compile defaults to DefaultCompile.
	Compile CompileFunc
	// LinkLog, when non-empty, makes every link fail with this log.
	LinkLog string
	// FramebufferErr makes CreateFramebuffer fail.
	FramebufferErr error
	// Fill is the RGBA value ReadPixels writes to every pixel.
	Fill [4]byte

	ClearColorValue [4]float32
	Viewports       [][4]int32
	BufferBytes     map[uint32]int
	BufferData      map[uint32][]float32
	Attribs         map[uint32]Attrib
	Shaders         map[uint32]*Shader
	Programs        map[uint32]*Program
	VertexArrays    map[uint32]bool
	Framebuffers    map[uint32][2]int
	Draws           int

	next         uint32
	boundBuffer  uint32
	boundFBO     uint32
	boundProgram uint32
}

func NewDevice(rec *Recorder) *Device {
	return &Device{
		Rec:          rec,
		BufferBytes:  make(map[uint32]int),
		BufferData:   make(map[uint32][]float32),
		Attribs:      make(map[uint32]Attrib),
		Shaders:      make(map[uint32]*Shader),
		Programs:     make(map[uint32]*Program),
		VertexArrays: make(map[uint32]bool),
		Framebuffers: make(map[uint32][2]int),
	}
}

// DefaultCompile accepts any source that starts with a #version directive
// and defines main.
func DefaultCompile(stage graphics.ShaderStage, source string) (bool, string) {
	if !strings.HasPrefix(strings.TrimSpace(source), "#version") {
		return false, "ERROR: 0:1: '' : #version required and missing."
	}
	if !strings.Contains(source, "void main()") {
		return false, "ERROR: 0:1: 'main' : function not defined"
	}
	return true, ""
}

func (d *Device) name() uint32 {
	d.next++
	return d.next
}

// LiveShaders counts shader objects that were created and not yet deleted.
func (d *Device) LiveShaders() int {
	n := 0
	for _, s := range d.Shaders {
		if !s.Deleted {
			n++
		}
	}
	return n
}

// LivePrograms counts program objects that were created and not yet deleted.
func (d *Device) LivePrograms() int {
	n := 0
	for _, p := range d.Programs {
		if !p.Deleted {
			n++
		}
	}
	return n
}

func (d *Device) Init() error {
	d.Rec.record("DeviceInit")
	return d.InitErr
}

func (d *Device) Version() string { return "4.1 fake" }

func (d *Device) ClearColor(r, g, b, a float32) {
	d.ClearColorValue = [4]float32{r, g, b, a}
	d.Rec.record("ClearColor")
}

func (d *Device) Clear() { d.Rec.record("Clear") }

func (d *Device) Viewport(x, y, width, height int32) {
	d.Viewports = append(d.Viewports, [4]int32{x, y, width, height})
	d.Rec.record("Viewport %d %d %d %d", x, y, width, height)
}

func (d *Device) CreateShader(stage graphics.ShaderStage) uint32 {
	id := d.name()
	d.Shaders[id] = &Shader{Stage: stage}
	d.Rec.record("CreateShader %s", stage)
	return id
}

func (d *Device) ShaderSource(shader uint32, source string) {
	d.Shaders[shader].Source = source
}

func (d *Device) CompileShader(shader uint32) {
	s := d.Shaders[shader]
	compile := d.Compile
	if compile == nil {
		compile = DefaultCompile
	}
	s.Compiled, s.Log = compile(s.Stage, s.Source)
	d.Rec.record("CompileShader %s", s.Stage)
}

func (d *Device) ShaderCompiled(shader uint32) bool { return d.Shaders[shader].Compiled }

func (d *Device) ShaderInfoLog(shader uint32) string { return d.Shaders[shader].Log }

func (d *Device) DeleteShader(shader uint32) {
	if s, ok := d.Shaders[shader]; ok {
		s.Deleted = true
	}
	d.Rec.record("DeleteShader %d", shader)
}

func (d *Device) CreateProgram() uint32 {
	id := d.name()
	d.Programs[id] = &Program{}
	d.Rec.record("CreateProgram")
	return id
}

func (d *Device) AttachShader(program, shader uint32) {
	p := d.Programs[program]
	p.Attached = append(p.Attached, shader)
}

func (d *Device) LinkProgram(program uint32) {
	p := d.Programs[program]
	p.Linked = d.LinkLog == ""
	for _, s := range p.Attached {
		if sh := d.Shaders[s]; sh == nil || !sh.Compiled {
			p.Linked = false
		}
	}
	d.Rec.record("LinkProgram")
}

func (d *Device) ProgramLinked(program uint32) bool { return d.Programs[program].Linked }

func (d *Device) ProgramInfoLog(program uint32) string {
	if d.LinkLog != "" {
		return d.LinkLog
	}
	if !d.Programs[program].Linked {
		return "ERROR: Linking with uncompiled shader"
	}
	return ""
}

func (d *Device) UseProgram(program uint32) {
	d.boundProgram = program
	d.Rec.record("UseProgram %d", program)
}

func (d *Device) DeleteProgram(program uint32) {
	if p, ok := d.Programs[program]; ok {
		p.Deleted = true
	}
	d.Rec.record("DeleteProgram %d", program)
}

func (d *Device) GenVertexArray() uint32 {
	id := d.name()
	d.VertexArrays[id] = true
	return id
}

func (d *Device) BindVertexArray(vao uint32) { d.Rec.record("BindVertexArray %d", vao) }

func (d *Device) DeleteVertexArray(vao uint32) {
	d.VertexArrays[vao] = false
	d.Rec.record("DeleteVertexArray %d", vao)
}

func (d *Device) GenBuffer() uint32 { return d.name() }

func (d *Device) BindArrayBuffer(vbo uint32) {
	d.boundBuffer = vbo
	d.Rec.record("BindArrayBuffer %d", vbo)
}

func (d *Device) UploadStatic(data []float32) {
	d.BufferBytes[d.boundBuffer] = len(data) * 4
	d.BufferData[d.boundBuffer] = append([]float32(nil), data...)
	d.Rec.record("UploadStatic %d", len(data)*4)
}

func (d *Device) DeleteBuffer(vbo uint32) {
	delete(d.BufferBytes, vbo)
	d.Rec.record("DeleteBuffer %d", vbo)
}

func (d *Device) VertexAttribPointer(index uint32, components, stride int32, offset int) {
	a := d.Attribs[index]
	a.Components, a.Stride, a.Offset = components, stride, offset
	d.Attribs[index] = a
}

func (d *Device) EnableVertexAttribArray(index uint32) {
	a := d.Attribs[index]
	a.Enabled = true
	d.Attribs[index] = a
}

func (d *Device) DrawTriangles(first, count int32) {
	d.Draws++
	d.Rec.record("DrawTriangles %d %d", first, count)
}

func (d *Device) CreateFramebuffer(width, height int) (uint32, error) {
	if d.FramebufferErr != nil {
		return 0, d.FramebufferErr
	}
	id := d.name()
	d.Framebuffers[id] = [2]int{width, height}
	d.Rec.record("CreateFramebuffer %d %d", width, height)
	return id, nil
}

func (d *Device) BindFramebuffer(fbo uint32) {
	d.boundFBO = fbo
	d.Rec.record("BindFramebuffer %d", fbo)
}

func (d *Device) ReadPixels(width, height int, dst []byte) {
	for i := 0; i+3 < len(dst) && i < width*height*4; i += 4 {
		copy(dst[i:i+4], d.Fill[:])
	}
	d.Rec.record("ReadPixels %d %d", width, height)
}

func (d *Device) DeleteFramebuffer(fbo uint32) {
	delete(d.Framebuffers, fbo)
	d.Rec.record("DeleteFramebuffer %d", fbo)
}
