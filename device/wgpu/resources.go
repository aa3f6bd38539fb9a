// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/framegraph/device"
)

// texture wraps a HAL texture together with its default full view, which
// is what render pass attachments and bind groups consume.
type texture struct {
	label  string
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
	format gputypes.TextureFormat

	// state tracks the current HAL usage state for barrier insertion
	// around copies. Holds a single usage bit, not the creation mask.
	state gputypes.TextureUsage
}

func (t *texture) Width() uint32                  { return t.width }
func (t *texture) Height() uint32                 { return t.height }
func (t *texture) Format() gputypes.TextureFormat { return t.format }

type buffer struct {
	label string
	buf   hal.Buffer
	size  uint64
}

func (b *buffer) Size() uint64 { return b.size }

type shaderModule struct {
	label string
	mod   hal.ShaderModule
}

func (m *shaderModule) Label() string { return m.label }

type sampler struct {
	label string
	smp   hal.Sampler
}

func (s *sampler) Label() string { return s.label }

type bindGroupLayout struct {
	label  string
	layout hal.BindGroupLayout
}

func (l *bindGroupLayout) Label() string { return l.label }

type bindGroup struct {
	label string
	group hal.BindGroup
}

func (g *bindGroup) Label() string { return g.label }

// pipeline holds either a render or a compute HAL pipeline plus the
// pipeline layout it was created with.
type pipeline struct {
	label   string
	render  hal.RenderPipeline
	compute hal.ComputePipeline
	layout  hal.PipelineLayout
}

func (p *pipeline) Label() string { return p.label }

// CreateTexture creates a HAL texture and its default view.
func (d *Device) CreateTexture(desc device.TextureDesc) (device.Texture, error) {
	halTex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", desc.Label, err)
	}
	view, err := d.dev.CreateTextureView(halTex, &hal.TextureViewDescriptor{
		Label:     desc.Label,
		Format:    gputypes.TextureFormatUndefined, // inherit from texture
		Dimension: gputypes.TextureViewDimensionUndefined,
		Aspect:    gputypes.TextureAspectAll,
		// Zero base/count selects all mips and layers.
	})
	if err != nil {
		d.dev.DestroyTexture(halTex)
		return nil, fmt.Errorf("wgpu: create texture view %q: %w", desc.Label, err)
	}
	state := gputypes.TextureUsageTextureBinding
	if desc.Usage&gputypes.TextureUsageRenderAttachment != 0 {
		state = gputypes.TextureUsageRenderAttachment
	}
	return &texture{
		label:  desc.Label,
		tex:    halTex,
		view:   view,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		state:  state,
	}, nil
}

// DestroyTexture releases the texture and its default view.
func (d *Device) DestroyTexture(t device.Texture) {
	wt, ok := t.(*texture)
	if !ok || wt.tex == nil {
		return
	}
	d.dev.DestroyTextureView(wt.view)
	d.dev.DestroyTexture(wt.tex)
	wt.view = nil
	wt.tex = nil
}

// texelSize returns the byte size of one texel for the formats the frame
// graph allocates.
func texelSize(f gputypes.TextureFormat) uint32 {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatDepth16Unorm:
		return 2
	case gputypes.TextureFormatRGBA16Float:
		return 8
	case gputypes.TextureFormatRGBA32Float:
		return 16
	default:
		// RGBA8, BGRA8, R32Float, Depth32Float.
		return 4
	}
}

// WriteTexture uploads data covering the full texture extent.
func (d *Device) WriteTexture(t device.Texture, data []byte) {
	wt, ok := t.(*texture)
	if !ok || wt.tex == nil {
		return
	}
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  wt.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  wt.width * texelSize(wt.format),
			RowsPerImage: wt.height,
		},
		&hal.Extent3D{Width: wt.width, Height: wt.height, DepthOrArrayLayers: 1},
	)
}

// CreateBuffer creates a HAL buffer.
func (d *Device) CreateBuffer(label string, size uint64, usage gputypes.BufferUsage) (device.Buffer, error) {
	buf, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create buffer %q: %w", label, err)
	}
	return &buffer{label: label, buf: buf, size: size}, nil
}

// DestroyBuffer releases a buffer.
func (d *Device) DestroyBuffer(b device.Buffer) {
	wb, ok := b.(*buffer)
	if !ok || wb.buf == nil {
		return
	}
	d.dev.DestroyBuffer(wb.buf)
	wb.buf = nil
}

// WriteBuffer writes data into a buffer through the queue.
func (d *Device) WriteBuffer(b device.Buffer, offset uint64, data []byte) {
	if wb, ok := b.(*buffer); ok && wb.buf != nil {
		d.queue.WriteBuffer(wb.buf, offset, data)
	}
}

// CreateShaderModule compiles WGSL to SPIR-V through naga and creates a
// HAL module from the words. Backends that consume WGSL directly get the
// source when naga cannot handle it.
func (d *Device) CreateShaderModule(label, wgsl string) (device.ShaderModule, error) {
	source := hal.ShaderSource{WGSL: wgsl}
	if spirvBytes, err := naga.Compile(wgsl); err == nil {
		// SPIR-V is little-endian 32-bit words.
		words := make([]uint32, len(spirvBytes)/4)
		for i := range words {
			words[i] = uint32(spirvBytes[i*4]) |
				uint32(spirvBytes[i*4+1])<<8 |
				uint32(spirvBytes[i*4+2])<<16 |
				uint32(spirvBytes[i*4+3])<<24
		}
		source = hal.ShaderSource{SPIRV: words}
	} else {
		device.Logger().Debug("wgpu: naga compile failed, passing WGSL through",
			"shader", label, "error", err)
	}

	mod, err := d.dev.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: source,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile shader %q: %w", label, err)
	}
	return &shaderModule{label: label, mod: mod}, nil
}

// DestroyShaderModule releases a shader module.
func (d *Device) DestroyShaderModule(m device.ShaderModule) {
	if wm, ok := m.(*shaderModule); ok && wm.mod != nil {
		d.dev.DestroyShaderModule(wm.mod)
		wm.mod = nil
	}
}

// CreateSampler creates a clamp-to-edge linear-filtering sampler.
func (d *Device) CreateSampler(label string) (device.Sampler, error) {
	smp, err := d.dev.CreateSampler(&hal.SamplerDescriptor{
		Label:        label,
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create sampler %q: %w", label, err)
	}
	return &sampler{label: label, smp: smp}, nil
}

// DestroySampler releases a sampler.
func (d *Device) DestroySampler(s device.Sampler) {
	if ws, ok := s.(*sampler); ok && ws.smp != nil {
		d.dev.DestroySampler(ws.smp)
		ws.smp = nil
	}
}
