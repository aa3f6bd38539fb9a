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

type clearConfig struct {
	// Color is the RGBA clear color, default opaque black.
	Color [4]float64 `json:"color"`
}

// registerClear registers the "clear" pass: a render pass whose only work
// is its clear load action on every declared output.
func registerClear(reg *pipeline.Registry) {
	reg.Register("clear", newClear, pipeline.Meta{
		DisplayName:    "Clear",
		Category:       "Utility",
		Kind:           framegraph.KindRender,
		DefaultOutputs: []string{"$backbuffer"},
	})
}

func newClear(cfg json.RawMessage, rc *pipeline.RenderContext, width, height uint32) (*pipeline.Pass, error) {
	c := clearConfig{Color: [4]float64{0, 0, 0, 1}}
	if len(cfg) > 0 {
		if err := json.Unmarshal(cfg, &c); err != nil {
			return nil, fmt.Errorf("clear: parse config: %w", err)
		}
	}
	clear := gputypes.Color{R: c.Color[0], G: c.Color[1], B: c.Color[2], A: c.Color[3]}

	return &pipeline.Pass{
		Kind: framegraph.KindRender,
		Setup: func(b *framegraph.Builder, io *pipeline.IO) {
			for i := range io.OutputNames {
				h := io.DeclareOutput(b, i)
				b.SetColorAttachment(i, h, gputypes.LoadOpClear, gputypes.StoreOpStore, clear)
			}
		},
		Render: func(*framegraph.PassContext, device.RenderPass) {
			// The clear happens in the attachment load action.
		},
	}, nil
}
