// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// OceanVertexShader displaces the surface grid by the cascade maps.
//
//go:embed ocean.vert
var OceanVertexShader string

// OceanFragmentShader shades the displaced surface.
//
//go:embed ocean.frag
var OceanFragmentShader string
