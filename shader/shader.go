package shader

// ────────────────────────────────── Desktop GL ──────────────────────────────────

const vertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec3 aPos;
void main()
{
    gl_Position = vec4(aPos.x, aPos.y, aPos.z, 1.0);
}
`

const fragmentShaderSourceGL = `#version 410 core
out vec4 FragColor;
void main()
{
    FragColor = vec4(1.0, 0.5, 0.2, 1.0);
}
`

// ──────────────────────────────────── GLES ──────────────────────────────────────

// The GLES sources double as the WebGL2 input handed to the translator.

const vertexShaderSourceGLES = `#version 300 es
layout (location = 0) in vec3 aPos;
void main()
{
    gl_Position = vec4(aPos.x, aPos.y, aPos.z, 1.0);
}
`

const fragmentShaderSourceGLES = `#version 300 es
precision mediump float;
out vec4 FragColor;
void main()
{
    FragColor = vec4(1.0, 0.5, 0.2, 1.0);
}
`

// ────────────────────────────────── Public API ─────────────────────────────────

// Sources is the vertex and fragment source text for one program.
type Sources struct {
	Vertex   string
	Fragment string
}

// Triangle returns the built-in pass-through vertex stage and flat orange
// fragment stage for a desktop core or a GLES context.
func Triangle(isGLES bool) Sources {
	if isGLES {
		return Sources{Vertex: vertexShaderSourceGLES, Fragment: fragmentShaderSourceGLES}
	}
	return Sources{Vertex: vertexShaderSourceGL, Fragment: fragmentShaderSourceGL}
}

// Portable returns the WebGL2 flavoured sources accepted by the translator.
func Portable() Sources {
	return Sources{Vertex: vertexShaderSourceGLES, Fragment: fragmentShaderSourceGLES}
}
