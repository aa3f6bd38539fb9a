// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"encoding/json"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/framegraph/pipeline"
)

type tonemapConfig struct {
	// Exposure pre-scales the HDR input before the Reinhard operator.
	Exposure float64 `json:"exposure"`
}

// registerTonemap registers the "tonemap" pass: a compute dispatch that
// maps the HDR input to the LDR output.
func registerTonemap(reg *pipeline.Registry) {
	reg.Register("tonemap", newTonemap, pipeline.Meta{
		DisplayName:    "Tone Mapping",
		Category:       "Post",
		Kind:           framegraph.KindCompute,
		DefaultInputs:  []string{"hdr"},
		DefaultOutputs: []string{"color"},
	})
}

func newTonemap(cfg json.RawMessage, rc *pipeline.RenderContext, width, height uint32) (*pipeline.Pass, error) {
	c := tonemapConfig{Exposure: 1}
	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &c); err != nil {
			return nil, fmt.Errorf("tonemap: parse config: %w", err)
		}
	}

	dev := rc.Device
	shader, err := rc.Shaders.Module(dev, "tonemap", tonemapWGSL)
	if err != nil {
		return nil, fmt.Errorf("tonemap: compile shader: %w", err)
	}
	layout, err := dev.CreateBindGroupLayout(device.BindGroupLayoutDesc{
		Label: "tonemap",
		Entries: []device.BindingLayoutEntry{
			{Binding: 0, Kind: device.BindingUniformBuffer, Visibility: gputypes.ShaderStageCompute},
			{Binding: 1, Kind: device.BindingSampledTexture, Visibility: gputypes.ShaderStageCompute},
			{Binding: 2, Kind: device.BindingStorageTexture, Visibility: gputypes.ShaderStageCompute,
				StorageFormat: gputypes.TextureFormatRGBA8Unorm},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("tonemap: bind group layout: %w", err)
	}
	params, err := dev.CreateBuffer("tonemap_params", 16, gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("tonemap: params buffer: %w", err)
	}
	pso, err := dev.CreateComputePipeline(device.ComputePipelineDesc{
		Label:      "tonemap",
		Shader:     shader,
		EntryPoint: "cs_main",
		Layouts:    []device.BindGroupLayout{layout},
	})
	if err != nil {
		return nil, fmt.Errorf("tonemap: pipeline: %w", err)
	}

	var in, out framegraph.Handle

	return &pipeline.Pass{
		Kind:       framegraph.KindCompute,
		MinInputs:  1,
		MinOutputs: 1,
		Setup: func(b *framegraph.Builder, io *pipeline.IO) {
			in = io.Inputs[0]
			b.Read(in)
			out = io.DeclareOutput(b, 0)
		},
		BeginFrame: func(*pipeline.FrameContext) {
			dev.WriteBuffer(params, 0, f32Bytes(float32(c.Exposure), 0, 0, 0))
		},
		Compute: func(ctx *framegraph.PassContext, cp device.ComputePass) {
			// Transients change identity between frames, so the bind
			// group is rebuilt per dispatch.
			bg, err := dev.CreateBindGroup(device.BindGroupDesc{
				Label:  "tonemap",
				Layout: layout,
				Entries: []device.BindGroupEntry{
					{Binding: 0, Buffer: params},
					{Binding: 1, Texture: ctx.Texture(in)},
					{Binding: 2, Texture: ctx.Texture(out)},
				},
			})
			if err != nil {
				framegraph.Logger().Warn("tonemap: bind group creation failed", "error", err)
				return
			}
			defer dev.DestroyBindGroup(bg)

			target := ctx.Texture(out)
			cp.SetPipeline(pso)
			cp.SetBindGroup(0, bg)
			cp.Dispatch((target.Width()+7)/8, (target.Height()+7)/8, 1)
		},
	}, nil
}
