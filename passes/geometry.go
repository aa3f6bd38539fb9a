// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"encoding/json"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/asset"
	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/framegraph/pipeline"
)

// Scratch keys the geometry pass consumes. A culling or upload step
// publishes these each frame; with nothing published the pass encodes no
// draws.
const (
	ScratchMeshletVertices   = "meshlet_vertices"
	ScratchMeshletIndices    = "meshlet_indices"
	ScratchMeshletIndexCount = "meshlet_index_count"
)

// geometryVertexLayout returns the vertex buffer layout the meshlet
// uploader packs: interleaved position + normal.
func geometryVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: 24,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1}, // normal
			},
		},
	}
}

type geometryConfig struct {
	// ClearColor is the RGBA clear color for the first output.
	ClearColor [4]float64 `json:"clearColor"`
}

// registerGeometry registers the "geometry" pass: rasterizes the visible
// meshlet geometry published in the frame scratch into a color target
// and an optional depth target.
func registerGeometry(reg *pipeline.Registry) {
	reg.Register("geometry", newGeometry, pipeline.Meta{
		DisplayName:    "Geometry",
		Category:       "Scene",
		Kind:           framegraph.KindRender,
		DefaultOutputs: []string{"color", "depth"},
	})
}

func newGeometry(cfg json.RawMessage, rc *pipeline.RenderContext, width, height uint32) (*pipeline.Pass, error) {
	var c geometryConfig
	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &c); err != nil {
			return nil, fmt.Errorf("geometry: parse config: %w", err)
		}
	}

	dev := rc.Device
	shader, err := rc.Shaders.Module(dev, "geometry", geometryWGSL)
	if err != nil {
		return nil, fmt.Errorf("geometry: compile shader: %w", err)
	}
	layout, err := dev.CreateBindGroupLayout(device.BindGroupLayoutDesc{
		Label: "geometry_camera",
		Entries: []device.BindingLayoutEntry{
			{Binding: 0, Kind: device.BindingUniformBuffer, Visibility: gputypes.ShaderStageVertex},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("geometry: bind group layout: %w", err)
	}
	camBuf, err := dev.CreateBuffer("geometry_camera", 64, gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("geometry: camera buffer: %w", err)
	}
	bindGroup, err := dev.CreateBindGroup(device.BindGroupDesc{
		Label:   "geometry_camera",
		Layout:  layout,
		Entries: []device.BindGroupEntry{{Binding: 0, Buffer: camBuf}},
	})
	if err != nil {
		return nil, fmt.Errorf("geometry: bind group: %w", err)
	}

	var (
		color    framegraph.Handle
		depth    framegraph.Handle
		hasDepth bool
		pso      device.Pipeline
		psoFail  bool
	)

	return &pipeline.Pass{
		Kind:       framegraph.KindRender,
		MinOutputs: 1,
		Setup: func(b *framegraph.Builder, io *pipeline.IO) {
			io.ReadInputs(b)
			slot := 0
			for i := range io.OutputNames {
				h := io.DeclareOutput(b, i)
				if asset.IsDepthFormat(io.Descs[i].Format) {
					depth = h
					hasDepth = true
					b.SetDepthAttachment(h, gputypes.LoadOpClear, gputypes.StoreOpStore, 1)
					continue
				}
				if slot == 0 {
					color = h
				}
				b.SetColorAttachment(slot, h, gputypes.LoadOpClear, gputypes.StoreOpStore,
					gputypes.Color{R: c.ClearColor[0], G: c.ClearColor[1], B: c.ClearColor[2], A: c.ClearColor[3]})
				slot++
			}
		},
		BeginFrame: func(*pipeline.FrameContext) {
			dev.WriteBuffer(camBuf, 0, matBytes(rc.Camera.ViewProj()))
		},
		Render: func(ctx *framegraph.PassContext, rp device.RenderPass) {
			vb, okV := rc.Scratch.Buffer(ScratchMeshletVertices)
			ib, okI := rc.Scratch.Buffer(ScratchMeshletIndices)
			count, _ := rc.Scratch.Count(ScratchMeshletIndexCount)
			if !okV || !okI || count == 0 {
				return // nothing visible this frame
			}

			if pso == nil && !psoFail {
				// Attachment formats are known only once the transients
				// exist, so the pipeline is built on first use.
				desc := device.RenderPipelineDesc{
					Label:         "geometry",
					Shader:        shader,
					VertexEntry:   "vs_main",
					FragmentEntry: "fs_main",
					Layouts:       []device.BindGroupLayout{layout},
					VertexBuffers: geometryVertexLayout(),
					ColorFormats:  []gputypes.TextureFormat{ctx.Texture(color).Format()},
				}
				if hasDepth {
					desc.DepthFormat = ctx.Texture(depth).Format()
					desc.DepthWrite = true
					desc.DepthCompare = gputypes.CompareFunctionLess
				}
				p, err := dev.CreateRenderPipeline(desc)
				if err != nil {
					psoFail = true
					framegraph.Logger().Warn("geometry: pipeline creation failed, pass disabled",
						"error", err)
					return
				}
				pso = p
			}
			if psoFail {
				return
			}

			rp.SetPipeline(pso)
			rp.SetBindGroup(0, bindGroup)
			rp.SetVertexBuffer(0, vb, 0)
			rp.SetIndexBuffer(ib, 0)
			rp.DrawIndexed(count, 1, 0, 0, 0)
		},
	}, nil
}
