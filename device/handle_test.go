// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func TestNullHandle(t *testing.T) {
	var h Handle = NullHandle{}

	if h.Device() != nil {
		t.Error("NullHandle.Device() should return nil")
	}
	if h.Queue() != nil {
		t.Error("NullHandle.Queue() should return nil")
	}
	if h.Adapter() != nil {
		t.Error("NullHandle.Adapter() should return nil")
	}
	if got := h.SurfaceFormat(); got != gputypes.TextureFormatUndefined {
		t.Errorf("NullHandle.SurfaceFormat() = %v, want Undefined", got)
	}
	if got := h.AdapterInfo(); got.Type != gpucontext.AdapterTypeUnknown {
		t.Errorf("NullHandle.AdapterInfo().Type = %v, want Unknown", got.Type)
	}
}
