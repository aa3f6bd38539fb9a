// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package passes provides the built-in pass types: clear, geometry, sky,
// tonemap, and blit. Each is a pipeline.Factory registered under a stable
// type name; pipeline assets compose them by name.
package passes

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/framegraph/pipeline"
)

//go:embed shaders/geometry.wgsl
var geometryWGSL string

//go:embed shaders/sky.wgsl
var skyWGSL string

//go:embed shaders/tonemap.wgsl
var tonemapWGSL string

// RegisterBuiltins registers every built-in pass type.
func RegisterBuiltins(reg *pipeline.Registry) {
	registerClear(reg)
	registerGeometry(reg)
	registerSky(reg)
	registerTonemap(reg)
	registerBlit(reg)
}

// matBytes serializes a column-major matrix for a uniform upload.
func matBytes(m mgl32.Mat4) []byte {
	buf := make([]byte, 64)
	for i, f := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// f32Bytes serializes float32 values for a uniform upload.
func f32Bytes(vals ...float32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, f := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
