// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu implements device.Device on top of the gogpu/wgpu HAL.
//
// The device can own its GPU (Open enumerates adapters and opens one) or
// attach to a host application's device via Attach, in which case Close
// leaves the shared HAL device alone.
//
// Frames execute synchronously: Submit waits on a fence before returning,
// so transient textures released after Execute are never still referenced
// by in-flight work.
package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/framegraph/device"
)

var _ device.Device = (*Device)(nil)

// Device is a device.Device backed by a gogpu/wgpu HAL device.
type Device struct {
	instance hal.Instance // nil when attached to a host-owned device
	dev      hal.Device
	queue    hal.Queue
	external bool

	adapterName string
}

// Open enumerates GPU adapters and opens a device on the best one,
// preferring discrete over integrated GPUs.
func Open() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("wgpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	device.Logger().Info("wgpu: device opened", "adapter", selected.Info.Name)
	return &Device{
		instance:    instance,
		dev:         openDev.Device,
		queue:       openDev.Queue,
		adapterName: selected.Info.Name,
	}, nil
}

// Attach wraps a host application's GPU device. The provider must expose
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue;
// gogpu.App's device provider does.
func Attach(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok || dev == nil {
		return nil, fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}
	return &Device{dev: dev, queue: queue, external: true, adapterName: "external"}, nil
}

// AdapterName returns the name of the adapter the device runs on.
func (d *Device) AdapterName() string { return d.adapterName }

// Close releases the HAL device and instance. Attached host devices are
// left alone; the host owns their lifetime.
func (d *Device) Close() {
	if d.external {
		d.dev = nil
		d.queue = nil
		return
	}
	if d.dev != nil {
		d.dev.Destroy()
		d.dev = nil
		d.queue = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}
