// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
)

// Event is one recorded NullDevice operation.
type Event struct {
	// Op is the operation name, e.g. "create_texture" or "begin_render".
	Op string

	// Label names the resource or pass the operation applies to.
	Label string
}

// String formats the event as "op(label)".
func (e Event) String() string { return fmt.Sprintf("%s(%s)", e.Op, e.Label) }

// NullDevice is a Device that performs no GPU work and records every
// operation into an event log. It backs the frame-graph test suite and
// headless tooling (pipeline validation without a GPU).
//
// NullDevice is safe for concurrent use, though frame encoding itself is
// single-threaded by contract.
type NullDevice struct {
	mu     sync.Mutex
	events []Event

	textureSeq int
	alive      int
}

// NewNullDevice creates an empty recording device.
func NewNullDevice() *NullDevice {
	return &NullDevice{}
}

// Events returns a copy of the recorded event log.
func (d *NullDevice) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

// AliveTextures returns the number of created-but-not-destroyed textures.
func (d *NullDevice) AliveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.alive
}

// Reset clears the event log. Live resource accounting is kept.
func (d *NullDevice) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = d.events[:0]
}

func (d *NullDevice) record(op, label string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Op: op, Label: label})
}

// NullTexture is the texture implementation recorded by NullDevice.
type NullTexture struct {
	label     string
	width     uint32
	height    uint32
	format    gputypes.TextureFormat
	destroyed bool
}

// Width returns the texture width in pixels.
func (t *NullTexture) Width() uint32 { return t.width }

// Height returns the texture height in pixels.
func (t *NullTexture) Height() uint32 { return t.height }

// Format returns the texture pixel format.
func (t *NullTexture) Format() gputypes.TextureFormat { return t.format }

// Label returns the texture debug label.
func (t *NullTexture) Label() string { return t.label }

// Destroyed reports whether DestroyTexture has been called on t.
func (t *NullTexture) Destroyed() bool { return t.destroyed }

type nullBuffer struct {
	label string
	size  uint64
}

func (b *nullBuffer) Size() uint64 { return b.size }

type nullLabeled struct{ label string }

func (l *nullLabeled) Label() string { return l.label }

// CreateTexture records the allocation and returns a NullTexture.
func (d *NullDevice) CreateTexture(desc TextureDesc) (Texture, error) {
	d.mu.Lock()
	d.textureSeq++
	d.alive++
	label := desc.Label
	if label == "" {
		label = fmt.Sprintf("texture_%d", d.textureSeq)
	}
	d.events = append(d.events, Event{Op: "create_texture", Label: label})
	d.mu.Unlock()
	return &NullTexture{label: label, width: desc.Width, height: desc.Height, format: desc.Format}, nil
}

// DestroyTexture records the release.
func (d *NullDevice) DestroyTexture(t Texture) {
	nt, ok := t.(*NullTexture)
	if !ok || nt.destroyed {
		return
	}
	nt.destroyed = true
	d.mu.Lock()
	d.alive--
	d.events = append(d.events, Event{Op: "destroy_texture", Label: nt.label})
	d.mu.Unlock()
}

// WriteTexture records the upload.
func (d *NullDevice) WriteTexture(t Texture, data []byte) {
	d.record("write_texture", textureLabel(t))
}

// CreateBuffer records the allocation.
func (d *NullDevice) CreateBuffer(label string, size uint64, usage gputypes.BufferUsage) (Buffer, error) {
	d.record("create_buffer", label)
	return &nullBuffer{label: label, size: size}, nil
}

// DestroyBuffer records the release.
func (d *NullDevice) DestroyBuffer(b Buffer) {
	if nb, ok := b.(*nullBuffer); ok {
		d.record("destroy_buffer", nb.label)
	}
}

// WriteBuffer records the write.
func (d *NullDevice) WriteBuffer(b Buffer, offset uint64, data []byte) {
	if nb, ok := b.(*nullBuffer); ok {
		d.record("write_buffer", nb.label)
	}
}

// CreateShaderModule records the compile and accepts any source.
func (d *NullDevice) CreateShaderModule(label, wgsl string) (ShaderModule, error) {
	d.record("create_shader", label)
	return &nullLabeled{label: label}, nil
}

// DestroyShaderModule records the release.
func (d *NullDevice) DestroyShaderModule(m ShaderModule) {
	d.record("destroy_shader", m.Label())
}

// CreateSampler records the creation.
func (d *NullDevice) CreateSampler(label string) (Sampler, error) {
	d.record("create_sampler", label)
	return &nullLabeled{label: label}, nil
}

// DestroySampler records the release.
func (d *NullDevice) DestroySampler(s Sampler) {
	d.record("destroy_sampler", s.Label())
}

// CreateBindGroupLayout records the creation.
func (d *NullDevice) CreateBindGroupLayout(desc BindGroupLayoutDesc) (BindGroupLayout, error) {
	d.record("create_bind_group_layout", desc.Label)
	return &nullLabeled{label: desc.Label}, nil
}

// DestroyBindGroupLayout records the release.
func (d *NullDevice) DestroyBindGroupLayout(l BindGroupLayout) {
	d.record("destroy_bind_group_layout", l.Label())
}

// CreateBindGroup records the creation.
func (d *NullDevice) CreateBindGroup(desc BindGroupDesc) (BindGroup, error) {
	d.record("create_bind_group", desc.Label)
	return &nullLabeled{label: desc.Label}, nil
}

// DestroyBindGroup records the release.
func (d *NullDevice) DestroyBindGroup(bg BindGroup) {
	d.record("destroy_bind_group", bg.Label())
}

// CreateRenderPipeline records the creation.
func (d *NullDevice) CreateRenderPipeline(desc RenderPipelineDesc) (Pipeline, error) {
	d.record("create_render_pipeline", desc.Label)
	return &nullLabeled{label: desc.Label}, nil
}

// CreateComputePipeline records the creation.
func (d *NullDevice) CreateComputePipeline(desc ComputePipelineDesc) (Pipeline, error) {
	d.record("create_compute_pipeline", desc.Label)
	return &nullLabeled{label: desc.Label}, nil
}

// DestroyPipeline records the release.
func (d *NullDevice) DestroyPipeline(p Pipeline) {
	d.record("destroy_pipeline", p.Label())
}

// BeginFrame returns a recording frame encoder.
func (d *NullDevice) BeginFrame(label string) (FrameEncoder, error) {
	d.record("begin_frame", label)
	return &nullFrameEncoder{dev: d, label: label}, nil
}

func textureLabel(t Texture) string {
	if nt, ok := t.(*NullTexture); ok {
		return nt.label
	}
	return "imported"
}

type nullFrameEncoder struct {
	dev   *NullDevice
	label string
}

func (e *nullFrameEncoder) BeginRenderPass(desc *RenderPassDesc) RenderPass {
	e.dev.record("begin_render", desc.Label)
	return &nullRenderPass{dev: e.dev, label: desc.Label}
}

func (e *nullFrameEncoder) BeginComputePass(label string) ComputePass {
	e.dev.record("begin_compute", label)
	return &nullComputePass{dev: e.dev, label: label}
}

func (e *nullFrameEncoder) BeginBlitPass(label string) BlitPass {
	e.dev.record("begin_blit", label)
	return &nullBlitPass{dev: e.dev, label: label}
}

func (e *nullFrameEncoder) Submit() error {
	e.dev.record("submit", e.label)
	return nil
}

func (e *nullFrameEncoder) Discard() {
	e.dev.record("discard", e.label)
}

type nullRenderPass struct {
	dev   *NullDevice
	label string
}

func (p *nullRenderPass) SetPipeline(Pipeline)                       { p.dev.record("set_pipeline", p.label) }
func (p *nullRenderPass) SetBindGroup(uint32, BindGroup)             { p.dev.record("set_bind_group", p.label) }
func (p *nullRenderPass) SetVertexBuffer(uint32, Buffer, uint64)     { p.dev.record("set_vertex_buffer", p.label) }
func (p *nullRenderPass) SetIndexBuffer(Buffer, uint64)              { p.dev.record("set_index_buffer", p.label) }
func (p *nullRenderPass) Draw(uint32, uint32, uint32, uint32)        { p.dev.record("draw", p.label) }
func (p *nullRenderPass) DrawIndexed(uint32, uint32, uint32, int32, uint32) {
	p.dev.record("draw_indexed", p.label)
}
func (p *nullRenderPass) End() { p.dev.record("end_render", p.label) }

type nullComputePass struct {
	dev   *NullDevice
	label string
}

func (p *nullComputePass) SetPipeline(Pipeline)           { p.dev.record("set_pipeline", p.label) }
func (p *nullComputePass) SetBindGroup(uint32, BindGroup) { p.dev.record("set_bind_group", p.label) }
func (p *nullComputePass) Dispatch(uint32, uint32, uint32) {
	p.dev.record("dispatch", p.label)
}
func (p *nullComputePass) End() { p.dev.record("end_compute", p.label) }

type nullBlitPass struct {
	dev   *NullDevice
	label string
}

func (p *nullBlitPass) Copy(src, dst Texture) {
	p.dev.record("copy", textureLabel(src)+"->"+textureLabel(dst))
}
func (p *nullBlitPass) End() { p.dev.record("end_blit", p.label) }
