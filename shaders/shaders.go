// Package shaders embeds the WGSL kernel sources and supports live reload
// of overrides during development.
package shaders

import (
	_ "embed"
)

//go:embed particles_sim.wgsl
var ParticleSimWGSL string

//go:embed displacement.wgsl
var DisplacementWGSL string

//go:embed postprocess.wgsl
var PostProcessWGSL string
