// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph/device"
)

func TestTexelSize(t *testing.T) {
	tests := []struct {
		format gputypes.TextureFormat
		want   uint32
	}{
		{gputypes.TextureFormatR8Unorm, 1},
		{gputypes.TextureFormatDepth16Unorm, 2},
		{gputypes.TextureFormatRGBA8Unorm, 4},
		{gputypes.TextureFormatBGRA8Unorm, 4},
		{gputypes.TextureFormatR32Float, 4},
		{gputypes.TextureFormatDepth32Float, 4},
		{gputypes.TextureFormatRGBA16Float, 8},
		{gputypes.TextureFormatRGBA32Float, 16},
	}
	for _, tt := range tests {
		if got := texelSize(tt.format); got != tt.want {
			t.Errorf("texelSize(%v) = %d, want %d", tt.format, got, tt.want)
		}
	}
}

func TestLayoutEntry(t *testing.T) {
	tests := []struct {
		name string
		in   device.BindingLayoutEntry
		// check inspects the converted entry.
		check func(t *testing.T, e gputypes.BindGroupLayoutEntry)
	}{
		{
			name: "uniform buffer",
			in:   device.BindingLayoutEntry{Binding: 0, Kind: device.BindingUniformBuffer, Visibility: gputypes.ShaderStageVertex},
			check: func(t *testing.T, e gputypes.BindGroupLayoutEntry) {
				if e.Buffer == nil || e.Buffer.Type != gputypes.BufferBindingTypeUniform {
					t.Error("uniform buffer layout not set")
				}
			},
		},
		{
			name: "read-only storage buffer",
			in:   device.BindingLayoutEntry{Binding: 1, Kind: device.BindingReadOnlyStorageBuffer, Visibility: gputypes.ShaderStageCompute},
			check: func(t *testing.T, e gputypes.BindGroupLayoutEntry) {
				if e.Buffer == nil || e.Buffer.Type != gputypes.BufferBindingTypeReadOnlyStorage {
					t.Error("read-only storage layout not set")
				}
			},
		},
		{
			name: "sampled texture",
			in:   device.BindingLayoutEntry{Binding: 2, Kind: device.BindingSampledTexture, Visibility: gputypes.ShaderStageFragment},
			check: func(t *testing.T, e gputypes.BindGroupLayoutEntry) {
				if e.Texture == nil || e.Texture.SampleType != gputypes.TextureSampleTypeFloat {
					t.Error("texture layout not set")
				}
			},
		},
		{
			name: "storage texture",
			in: device.BindingLayoutEntry{Binding: 3, Kind: device.BindingStorageTexture,
				Visibility: gputypes.ShaderStageCompute, StorageFormat: gputypes.TextureFormatRGBA8Unorm},
			check: func(t *testing.T, e gputypes.BindGroupLayoutEntry) {
				if e.StorageTexture == nil || e.StorageTexture.Format != gputypes.TextureFormatRGBA8Unorm {
					t.Error("storage texture layout not set")
				}
				if e.StorageTexture != nil && e.StorageTexture.Access != gputypes.StorageTextureAccessWriteOnly {
					t.Error("storage texture access not write-only")
				}
			},
		},
		{
			name: "sampler",
			in:   device.BindingLayoutEntry{Binding: 4, Kind: device.BindingSampler, Visibility: gputypes.ShaderStageFragment},
			check: func(t *testing.T, e gputypes.BindGroupLayoutEntry) {
				if e.Sampler == nil || e.Sampler.Type != gputypes.SamplerBindingTypeFiltering {
					t.Error("sampler layout not set")
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := layoutEntry(tt.in)
			if err != nil {
				t.Fatalf("layoutEntry: %v", err)
			}
			if got.Binding != tt.in.Binding {
				t.Errorf("Binding = %d, want %d", got.Binding, tt.in.Binding)
			}
			if got.Visibility != tt.in.Visibility {
				t.Errorf("Visibility = %v, want %v", got.Visibility, tt.in.Visibility)
			}
			tt.check(t, got)
		})
	}

	if _, err := layoutEntry(device.BindingLayoutEntry{Binding: 9, Kind: 0}); err == nil {
		t.Error("layoutEntry accepted unknown binding kind")
	}
}

// fakePoller reports one more completed submission per poll.
type fakePoller struct {
	completed uint64
	polls     int
}

func (p *fakePoller) PollCompleted() uint64 {
	p.polls++
	if p.completed < uint64(p.polls) {
		p.completed = uint64(p.polls)
	}
	return p.completed - 1
}

func TestWaitSubmission(t *testing.T) {
	p := &fakePoller{}
	if err := waitSubmission(p, 3, time.Second); err != nil {
		t.Fatalf("waitSubmission: %v", err)
	}
	if p.polls < 4 {
		t.Errorf("polls = %d, want at least 4 (returned before index 3 completed)", p.polls)
	}
}

// stuckPoller never completes anything.
type stuckPoller struct{}

func (stuckPoller) PollCompleted() uint64 { return 0 }

func TestWaitSubmissionTimeout(t *testing.T) {
	err := waitSubmission(stuckPoller{}, 1, time.Millisecond)
	if err == nil {
		t.Fatal("waitSubmission returned without the submission completing")
	}
}
