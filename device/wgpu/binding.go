// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/framegraph/device"
)

// layoutEntry converts one abstract binding slot to its HAL form.
func layoutEntry(e device.BindingLayoutEntry) (gputypes.BindGroupLayoutEntry, error) {
	out := gputypes.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: e.Visibility,
	}
	switch e.Kind {
	case device.BindingUniformBuffer:
		out.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
	case device.BindingStorageBuffer:
		out.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}
	case device.BindingReadOnlyStorageBuffer:
		out.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}
	case device.BindingSampledTexture:
		out.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case device.BindingStorageTexture:
		out.StorageTexture = &gputypes.StorageTextureBindingLayout{
			Access:        gputypes.StorageTextureAccessWriteOnly,
			Format:        e.StorageFormat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case device.BindingSampler:
		out.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	default:
		return out, fmt.Errorf("wgpu: unknown binding kind %d at binding %d", e.Kind, e.Binding)
	}
	return out, nil
}

// CreateBindGroupLayout creates a HAL bind group layout.
func (d *Device) CreateBindGroupLayout(desc device.BindGroupLayoutDesc) (device.BindGroupLayout, error) {
	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		he, err := layoutEntry(e)
		if err != nil {
			return nil, err
		}
		entries = append(entries, he)
	}
	layout, err := d.dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group layout %q: %w", desc.Label, err)
	}
	return &bindGroupLayout{label: desc.Label, layout: layout}, nil
}

// DestroyBindGroupLayout releases a bind group layout.
func (d *Device) DestroyBindGroupLayout(l device.BindGroupLayout) {
	if wl, ok := l.(*bindGroupLayout); ok && wl.layout != nil {
		d.dev.DestroyBindGroupLayout(wl.layout)
		wl.layout = nil
	}
}

// CreateBindGroup creates a HAL bind group from abstract resource entries.
func (d *Device) CreateBindGroup(desc device.BindGroupDesc) (device.BindGroup, error) {
	wl, ok := desc.Layout.(*bindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("wgpu: bind group %q: layout is not a wgpu layout", desc.Label)
	}
	entries := make([]gputypes.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		out := gputypes.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			wb, ok := e.Buffer.(*buffer)
			if !ok {
				return nil, fmt.Errorf("wgpu: bind group %q: binding %d buffer is not a wgpu buffer", desc.Label, e.Binding)
			}
			out.Resource = gputypes.BufferBinding{
				Buffer: wb.buf.NativeHandle(),
				Offset: 0,
				Size:   wb.size,
			}
		case e.Texture != nil:
			wt, ok := e.Texture.(*texture)
			if !ok {
				return nil, fmt.Errorf("wgpu: bind group %q: binding %d texture is not a wgpu texture", desc.Label, e.Binding)
			}
			out.Resource = gputypes.TextureViewBinding{TextureView: wt.view.NativeHandle()}
		case e.Sampler != nil:
			ws, ok := e.Sampler.(*sampler)
			if !ok {
				return nil, fmt.Errorf("wgpu: bind group %q: binding %d sampler is not a wgpu sampler", desc.Label, e.Binding)
			}
			out.Resource = gputypes.SamplerBinding{Sampler: ws.smp.NativeHandle()}
		default:
			return nil, fmt.Errorf("wgpu: bind group %q: binding %d has no resource", desc.Label, e.Binding)
		}
		entries = append(entries, out)
	}
	group, err := d.dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  wl.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group %q: %w", desc.Label, err)
	}
	return &bindGroup{label: desc.Label, group: group}, nil
}

// DestroyBindGroup releases a bind group.
func (d *Device) DestroyBindGroup(bg device.BindGroup) {
	if wg, ok := bg.(*bindGroup); ok && wg.group != nil {
		d.dev.DestroyBindGroup(wg.group)
		wg.group = nil
	}
}

// pipelineLayout builds a HAL pipeline layout from the abstract bind
// group layouts.
func (d *Device) pipelineLayout(label string, layouts []device.BindGroupLayout) (hal.PipelineLayout, error) {
	halLayouts := make([]hal.BindGroupLayout, 0, len(layouts))
	for i, l := range layouts {
		wl, ok := l.(*bindGroupLayout)
		if !ok {
			return nil, fmt.Errorf("wgpu: pipeline %q: layout %d is not a wgpu layout", label, i)
		}
		halLayouts = append(halLayouts, wl.layout)
	}
	layout, err := d.dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: halLayouts,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create pipeline layout %q: %w", label, err)
	}
	return layout, nil
}

// CreateRenderPipeline creates a HAL render pipeline.
func (d *Device) CreateRenderPipeline(desc device.RenderPipelineDesc) (device.Pipeline, error) {
	wm, ok := desc.Shader.(*shaderModule)
	if !ok {
		return nil, fmt.Errorf("wgpu: pipeline %q: shader is not a wgpu module", desc.Label)
	}
	layout, err := d.pipelineLayout(desc.Label, desc.Layouts)
	if err != nil {
		return nil, err
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	targets := make([]gputypes.ColorTargetState, 0, len(desc.ColorFormats))
	for _, f := range desc.ColorFormats {
		targets = append(targets, gputypes.ColorTargetState{
			Format:    f,
			Blend:     &premulBlend,
			WriteMask: gputypes.ColorWriteMaskAll,
		})
	}

	halDesc := &hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     wm.mod,
			EntryPoint: desc.VertexEntry,
			Buffers:    desc.VertexBuffers,
		},
		Fragment: &hal.FragmentState{
			Module:     wm.mod,
			EntryPoint: desc.FragmentEntry,
			Targets:    targets,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if desc.DepthFormat != gputypes.TextureFormatUndefined {
		compare := desc.DepthCompare
		if compare == 0 {
			compare = gputypes.CompareFunctionAlways
		}
		keepAll := hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		}
		halDesc.DepthStencil = &hal.DepthStencilState{
			Format:            desc.DepthFormat,
			DepthWriteEnabled: desc.DepthWrite,
			DepthCompare:      compare,
			StencilFront:      keepAll,
			StencilBack:       keepAll,
			StencilReadMask:   0xFF,
			StencilWriteMask:  0xFF,
		}
	}

	p, err := d.dev.CreateRenderPipeline(halDesc)
	if err != nil {
		d.dev.DestroyPipelineLayout(layout)
		return nil, fmt.Errorf("wgpu: create render pipeline %q: %w", desc.Label, err)
	}
	return &pipeline{label: desc.Label, render: p, layout: layout}, nil
}

// CreateComputePipeline creates a HAL compute pipeline.
func (d *Device) CreateComputePipeline(desc device.ComputePipelineDesc) (device.Pipeline, error) {
	wm, ok := desc.Shader.(*shaderModule)
	if !ok {
		return nil, fmt.Errorf("wgpu: pipeline %q: shader is not a wgpu module", desc.Label)
	}
	layout, err := d.pipelineLayout(desc.Label, desc.Layouts)
	if err != nil {
		return nil, err
	}
	p, err := d.dev.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Compute: hal.ComputeState{Module: wm.mod, EntryPoint: desc.EntryPoint},
	})
	if err != nil {
		d.dev.DestroyPipelineLayout(layout)
		return nil, fmt.Errorf("wgpu: create compute pipeline %q: %w", desc.Label, err)
	}
	return &pipeline{label: desc.Label, compute: p, layout: layout}, nil
}

// DestroyPipeline releases a pipeline and its layout.
func (d *Device) DestroyPipeline(p device.Pipeline) {
	wp, ok := p.(*pipeline)
	if !ok {
		return
	}
	if wp.render != nil {
		d.dev.DestroyRenderPipeline(wp.render)
		wp.render = nil
	}
	if wp.compute != nil {
		d.dev.DestroyComputePipeline(wp.compute)
		wp.compute = nil
	}
	if wp.layout != nil {
		d.dev.DestroyPipelineLayout(wp.layout)
		wp.layout = nil
	}
}
