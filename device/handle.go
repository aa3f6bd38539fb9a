// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Handle provides GPU device access from a host application.
//
// A host framework (e.g. gogpu.App) that already owns a GPU device
// implements gpucontext.DeviceProvider and passes it to device/wgpu so the
// frame graph shares the host's device instead of opening its own.
//
// Handle is an alias for gpucontext.DeviceProvider, keeping full
// compatibility with the gpucontext ecosystem.
type Handle = gpucontext.DeviceProvider

// NullHandle is a Handle that provides no device. Useful as a placeholder
// in tests and tooling that run entirely on NullDevice.
type NullHandle struct{}

// Device returns nil: no GPU device is available.
func (NullHandle) Device() gpucontext.Device { return nil }

// Queue returns nil: no GPU queue is available.
func (NullHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil: no GPU adapter is available.
func (NullHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns the undefined format: no surface is attached.
func (NullHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo returns an unknown adapter: no adapter info is available.
func (NullHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

// Ensure NullHandle implements Handle.
var _ Handle = NullHandle{}
