// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/framegraph/device"
)

// submitTimeout bounds the completion wait after submit. A frame that
// takes longer than this has hung the GPU.
const submitTimeout = 5 * time.Second

// frameEncoder records one frame into a single HAL command encoder and
// submits it synchronously: Submit returns only after the queue reports
// the submission completed, so the caller may immediately release
// transient resources.
type frameEncoder struct {
	dev     *Device
	label   string
	encoder hal.CommandEncoder
}

// BeginFrame creates the command encoder and opens the encoding scope.
func (d *Device) BeginFrame(label string) (device.FrameEncoder, error) {
	encoder, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	return &frameEncoder{dev: d, label: label, encoder: encoder}, nil
}

// view resolves the abstract texture to its HAL view for attachment use.
func view(t device.Texture) hal.TextureView {
	if wt, ok := t.(*texture); ok {
		return wt.view
	}
	return nil
}

// BeginRenderPass opens a HAL render pass with the described attachments.
func (e *frameEncoder) BeginRenderPass(desc *device.RenderPassDesc) device.RenderPass {
	halDesc := &hal.RenderPassDescriptor{Label: desc.Label}
	for _, c := range desc.Colors {
		halDesc.ColorAttachments = append(halDesc.ColorAttachments, hal.RenderPassColorAttachment{
			View:       view(c.View),
			LoadOp:     c.LoadOp,
			StoreOp:    c.StoreOp,
			ClearValue: c.Clear,
		})
	}
	if desc.Depth != nil {
		halDesc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:            view(desc.Depth.View),
			DepthLoadOp:     desc.Depth.LoadOp,
			DepthStoreOp:    desc.Depth.StoreOp,
			DepthClearValue: desc.Depth.ClearDepth,
			StencilLoadOp:   gputypes.LoadOpClear,
			StencilStoreOp:  gputypes.StoreOpDiscard,
		}
	}
	return &renderPass{rp: e.encoder.BeginRenderPass(halDesc)}
}

// BeginComputePass opens a HAL compute pass.
func (e *frameEncoder) BeginComputePass(label string) device.ComputePass {
	return &computePass{cp: e.encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: label})}
}

// BeginBlitPass returns a copy scope. HAL copies are encoder-level
// commands, so the scope only carries the encoder.
func (e *frameEncoder) BeginBlitPass(label string) device.BlitPass {
	return &blitPass{enc: e}
}

// completionPoller is the part of hal.Queue the submit wait needs.
type completionPoller interface {
	PollCompleted() uint64
}

// waitSubmission polls the queue until the submission index is reported
// completed, or the timeout elapses. The HAL manages its own fences;
// PollCompleted is the only completion signal it exposes.
func waitSubmission(q completionPoller, index uint64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for q.PollCompleted() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("wgpu: submission %d not completed within %v", index, timeout)
		}
		time.Sleep(100 * time.Microsecond)
	}
	return nil
}

// Submit closes encoding, submits the command buffer, and blocks until
// the queue reports the submission completed.
func (e *frameEncoder) Submit() error {
	cmdBuf, err := e.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer e.dev.dev.FreeCommandBuffer(cmdBuf)

	index, err := e.dev.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	return waitSubmission(e.dev.queue, index, submitTimeout)
}

// Discard abandons the command stream.
func (e *frameEncoder) Discard() {
	e.encoder.DiscardEncoding()
}

type renderPass struct {
	rp hal.RenderPassEncoder
}

func (p *renderPass) SetPipeline(pl device.Pipeline) {
	if wp, ok := pl.(*pipeline); ok && wp.render != nil {
		p.rp.SetPipeline(wp.render)
	}
}

func (p *renderPass) SetBindGroup(index uint32, bg device.BindGroup) {
	if wg, ok := bg.(*bindGroup); ok {
		p.rp.SetBindGroup(index, wg.group, nil)
	}
}

func (p *renderPass) SetVertexBuffer(slot uint32, buf device.Buffer, offset uint64) {
	if wb, ok := buf.(*buffer); ok {
		p.rp.SetVertexBuffer(slot, wb.buf, offset)
	}
}

func (p *renderPass) SetIndexBuffer(buf device.Buffer, offset uint64) {
	if wb, ok := buf.(*buffer); ok {
		p.rp.SetIndexBuffer(wb.buf, gputypes.IndexFormatUint32, offset)
	}
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.rp.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.rp.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *renderPass) End() {
	p.rp.End()
}

type computePass struct {
	cp hal.ComputePassEncoder
}

func (p *computePass) SetPipeline(pl device.Pipeline) {
	if wp, ok := pl.(*pipeline); ok && wp.compute != nil {
		p.cp.SetPipeline(wp.compute)
	}
}

func (p *computePass) SetBindGroup(index uint32, bg device.BindGroup) {
	if wg, ok := bg.(*bindGroup); ok {
		p.cp.SetBindGroup(index, wg.group, nil)
	}
}

func (p *computePass) Dispatch(x, y, z uint32) {
	p.cp.Dispatch(x, y, z)
}

func (p *computePass) End() {
	p.cp.End()
}

type blitPass struct {
	enc *frameEncoder
}

// Copy transitions both textures into transfer states, records a full
// extent copy, and transitions them back so later passes can sample or
// render into them.
func (p *blitPass) Copy(src, dst device.Texture) {
	ws, okS := src.(*texture)
	wd, okD := dst.(*texture)
	if !okS || !okD {
		return
	}
	encoder := p.enc.encoder

	encoder.TransitionTextures([]hal.TextureBarrier{
		{
			Texture: ws.tex,
			Usage: hal.TextureUsageTransition{
				OldUsage: ws.state,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		},
		{
			Texture: wd.tex,
			Usage: hal.TextureUsageTransition{
				OldUsage: wd.state,
				NewUsage: gputypes.TextureUsageCopyDst,
			},
		},
	})

	encoder.CopyTextureToTexture(ws.tex, wd.tex, []hal.TextureCopy{{
		SrcBase: hal.ImageCopyTexture{Texture: ws.tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		DstBase: hal.ImageCopyTexture{Texture: wd.tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		Size:    hal.Extent3D{Width: ws.width, Height: ws.height, DepthOrArrayLayers: 1},
	}})

	encoder.TransitionTextures([]hal.TextureBarrier{
		{
			Texture: ws.tex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: ws.state,
			},
		},
		{
			Texture: wd.tex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopyDst,
				NewUsage: wd.state,
			},
		},
	})
}

// End is a no-op: copies are encoder-level commands with no scope to
// close.
func (p *blitPass) End() {}
