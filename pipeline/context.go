// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pipeline builds frame graphs from declarative pipeline assets.
// A Registry maps pass type names to factories, a Builder resolves an
// asset into an executable graph, and a Reloader keeps the graph in sync
// with the asset file on disk.
package pipeline

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/framegraph/internal/shadercache"
)

// Camera carries the view and projection transforms shared by the
// pipeline's render passes.
type Camera struct {
	View mgl32.Mat4
	Proj mgl32.Mat4
}

// NewCamera creates a camera with identity transforms.
func NewCamera() *Camera {
	return &Camera{View: mgl32.Ident4(), Proj: mgl32.Ident4()}
}

// SetPerspective sets a perspective projection. fovy is in radians.
func (c *Camera) SetPerspective(fovy, aspect, near, far float32) {
	c.Proj = mgl32.Perspective(fovy, aspect, near, far)
}

// LookAt sets the view transform from an eye position, target, and up
// vector.
func (c *Camera) LookAt(eye, center, up mgl32.Vec3) {
	c.View = mgl32.LookAtV(eye, center, up)
}

// ViewProj returns the combined view-projection matrix.
func (c *Camera) ViewProj() mgl32.Mat4 {
	return c.Proj.Mul4(c.View)
}

// FrameScratch is the per-frame channel through which one pass publishes
// GPU handles that a later pass in the same frame consumes — e.g. a
// culling pass publishing the visible-meshlet buffer the geometry pass
// draws from. It is reset at the start of every frame; values never
// outlive the frame that published them.
//
// Only passes explicitly handed the scratch (via RenderContext) touch
// it, and always from the single render goroutine.
type FrameScratch struct {
	buffers  map[string]device.Buffer
	textures map[string]device.Texture
	counts   map[string]uint32
}

// NewFrameScratch creates an empty scratch.
func NewFrameScratch() *FrameScratch {
	return &FrameScratch{
		buffers:  make(map[string]device.Buffer),
		textures: make(map[string]device.Texture),
		counts:   make(map[string]uint32),
	}
}

// Reset drops all published values. Called once per frame before any
// pass runs.
func (s *FrameScratch) Reset() {
	clear(s.buffers)
	clear(s.textures)
	clear(s.counts)
}

// PublishBuffer makes a buffer available under name for the rest of the
// frame.
func (s *FrameScratch) PublishBuffer(name string, b device.Buffer) {
	s.buffers[name] = b
}

// Buffer returns the buffer published under name this frame.
func (s *FrameScratch) Buffer(name string) (device.Buffer, bool) {
	b, ok := s.buffers[name]
	return b, ok
}

// PublishTexture makes a texture available under name for the rest of
// the frame.
func (s *FrameScratch) PublishTexture(name string, t device.Texture) {
	s.textures[name] = t
}

// Texture returns the texture published under name this frame.
func (s *FrameScratch) Texture(name string) (device.Texture, bool) {
	t, ok := s.textures[name]
	return t, ok
}

// PublishCount makes a count (e.g. visible instances after culling)
// available under name for the rest of the frame.
func (s *FrameScratch) PublishCount(name string, n uint32) {
	s.counts[name] = n
}

// Count returns the count published under name this frame.
func (s *FrameScratch) Count(name string) (uint32, bool) {
	n, ok := s.counts[name]
	return n, ok
}

// RenderContext is the static context handed to every pass factory. It
// outlives individual frames and graph rebuilds; per-frame state lives
// in FrameContext and FrameScratch.
type RenderContext struct {
	// Device is the GPU device all passes allocate through.
	Device device.Device

	// Host exposes the native device for passes that need raw access.
	Host device.Handle

	// Shaders caches compiled shader modules across graph rebuilds.
	Shaders *shadercache.Cache

	// Camera is the shared view/projection state.
	Camera *Camera

	// Scratch is the per-frame publish/consume channel between passes.
	Scratch *FrameScratch

	// Width and Height are the current target dimensions.
	Width, Height uint32

	// Environment is the precomputed atmosphere/environment texture, or
	// nil when unavailable (the sky pass substitutes a fallback).
	Environment device.Texture
}

// FrameContext carries per-frame values into pass BeginFrame hooks.
type FrameContext struct {
	// FrameIndex counts frames since startup.
	FrameIndex uint64

	// DeltaTime is the previous frame's duration in seconds.
	DeltaTime float32

	// Time is seconds since startup, for animated passes.
	Time float32
}
