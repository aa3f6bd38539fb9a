// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package passes

import (
	"encoding/json"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/framegraph/pipeline"
)

// registerBlit registers the "blit" pass: copies its input into its
// output, typically to move a finished image into the swap-chain target.
func registerBlit(reg *pipeline.Registry) {
	reg.Register("blit", newBlit, pipeline.Meta{
		DisplayName:    "Blit",
		Category:       "Utility",
		Kind:           framegraph.KindBlit,
		DefaultInputs:  []string{"color"},
		DefaultOutputs: []string{"$backbuffer"},
	})
}

func newBlit(cfg json.RawMessage, rc *pipeline.RenderContext, width, height uint32) (*pipeline.Pass, error) {
	var in, out framegraph.Handle

	return &pipeline.Pass{
		Kind:       framegraph.KindBlit,
		MinInputs:  1,
		MinOutputs: 1,
		Setup: func(b *framegraph.Builder, io *pipeline.IO) {
			in = io.Inputs[0]
			b.Read(in)
			out = io.DeclareOutput(b, 0)
		},
		Blit: func(ctx *framegraph.PassContext, bp device.BlitPass) {
			bp.Copy(ctx.Texture(in), ctx.Texture(out))
		},
	}, nil
}
