// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/framegraph/pipeline"
)

const skyFallbackSize = 64

type skyConfig struct {
	// FallbackColor is the flat sky color used when no environment
	// texture is available, default a plain light blue.
	FallbackColor [4]float64 `json:"fallbackColor"`
}

// registerSky registers the "sky" pass: samples the precomputed
// environment texture across the full target. Missing atmosphere data is
// non-fatal — the pass substitutes a flat-color fallback texture and
// logs a warning.
func registerSky(reg *pipeline.Registry) {
	reg.Register("sky", newSky, pipeline.Meta{
		DisplayName:    "Sky",
		Category:       "Scene",
		Kind:           framegraph.KindRender,
		DefaultOutputs: []string{"color"},
	})
}

// skyFallbackTexture builds a small vertical-gradient texture around the
// configured flat color. The gradient is painted at 4x4 and upscaled so
// bilinear sampling stays smooth at any target size.
func skyFallbackTexture(dev device.Device, c [4]float64) (device.Texture, error) {
	clamp := func(v float64) uint8 {
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 255
		}
		return uint8(v * 255)
	}

	small := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		// Slightly brighter at the horizon (bottom rows).
		scale := 1.0 + 0.1*float64(y)/3.0
		px := color.RGBA{
			R: clamp(c[0] * scale),
			G: clamp(c[1] * scale),
			B: clamp(c[2] * scale),
			A: clamp(c[3]),
		}
		for x := 0; x < 4; x++ {
			small.SetRGBA(x, y, px)
		}
	}

	full := image.NewRGBA(image.Rect(0, 0, skyFallbackSize, skyFallbackSize))
	draw.BiLinear.Scale(full, full.Bounds(), small, small.Bounds(), draw.Src, nil)

	tex, err := dev.CreateTexture(device.TextureDesc{
		Label:  "sky_fallback",
		Width:  skyFallbackSize,
		Height: skyFallbackSize,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	dev.WriteTexture(tex, full.Pix)
	return tex, nil
}

func newSky(cfg json.RawMessage, rc *pipeline.RenderContext, width, height uint32) (*pipeline.Pass, error) {
	c := skyConfig{FallbackColor: [4]float64{0.45, 0.65, 0.9, 1}}
	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &c); err != nil {
			return nil, fmt.Errorf("sky: parse config: %w", err)
		}
	}

	dev := rc.Device
	env := rc.Environment
	if env == nil {
		fallback, err := skyFallbackTexture(dev, c.FallbackColor)
		if err != nil {
			return nil, fmt.Errorf("sky: fallback texture: %w", err)
		}
		env = fallback
		framegraph.Logger().Warn("sky: no environment texture, using flat-color fallback")
	}

	shader, err := rc.Shaders.Module(dev, "sky", skyWGSL)
	if err != nil {
		return nil, fmt.Errorf("sky: compile shader: %w", err)
	}
	layout, err := dev.CreateBindGroupLayout(device.BindGroupLayoutDesc{
		Label: "sky_env",
		Entries: []device.BindingLayoutEntry{
			{Binding: 0, Kind: device.BindingSampledTexture, Visibility: gputypes.ShaderStageFragment},
			{Binding: 1, Kind: device.BindingSampler, Visibility: gputypes.ShaderStageFragment},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sky: bind group layout: %w", err)
	}
	sampler, err := dev.CreateSampler("sky_env")
	if err != nil {
		return nil, fmt.Errorf("sky: sampler: %w", err)
	}
	bindGroup, err := dev.CreateBindGroup(device.BindGroupDesc{
		Label:  "sky_env",
		Layout: layout,
		Entries: []device.BindGroupEntry{
			{Binding: 0, Texture: env},
			{Binding: 1, Sampler: sampler},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sky: bind group: %w", err)
	}

	var (
		out     framegraph.Handle
		pso     device.Pipeline
		psoFail bool
	)

	return &pipeline.Pass{
		Kind:       framegraph.KindRender,
		MinOutputs: 1,
		Setup: func(b *framegraph.Builder, io *pipeline.IO) {
			io.ReadInputs(b)
			out = io.DeclareOutput(b, 0)
			// Drawn behind everything that follows; no clear needed when
			// the sky covers the full target.
			b.SetColorAttachment(0, out, gputypes.LoadOpClear, gputypes.StoreOpStore, gputypes.Color{A: 1})
		},
		Render: func(ctx *framegraph.PassContext, rp device.RenderPass) {
			if pso == nil && !psoFail {
				p, err := dev.CreateRenderPipeline(device.RenderPipelineDesc{
					Label:         "sky",
					Shader:        shader,
					VertexEntry:   "vs_main",
					FragmentEntry: "fs_main",
					Layouts:       []device.BindGroupLayout{layout},
					ColorFormats:  []gputypes.TextureFormat{ctx.Texture(out).Format()},
				})
				if err != nil {
					psoFail = true
					framegraph.Logger().Warn("sky: pipeline creation failed, pass disabled", "error", err)
					return
				}
				pso = p
			}
			if psoFail {
				return
			}
			rp.SetPipeline(pso)
			rp.SetBindGroup(0, bindGroup)
			rp.Draw(3, 1, 0, 0)
		},
	}, nil
}
