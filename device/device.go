// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package device defines the narrow GPU abstraction the frame graph
// executes against.
//
// The frame graph never talks to a graphics API directly. It allocates
// transient textures, begins and ends encoding scopes, and records copy
// operations through the Device interface; everything else (pipelines,
// bind groups, draws, dispatches) is issued by pass encode callbacks
// against the same interface. Implementations:
//   - device/wgpu: real GPU execution via gogpu/wgpu HAL
//   - NullDevice: a recording stub for tests and headless tooling
package device

import (
	"github.com/gogpu/gputypes"
)

// Texture represents a GPU texture tracked by the frame graph.
// Implementations wrap the backend texture plus its default view.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() uint32

	// Height returns the texture height in pixels.
	Height() uint32

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat
}

// Buffer represents a GPU buffer. The frame graph treats buffers as
// opaque scene-side collaborators; passes create and bind them directly.
type Buffer interface {
	// Size returns the buffer size in bytes.
	Size() uint64
}

// ShaderModule is a compiled shader.
type ShaderModule interface {
	// Label returns the debug label the module was created with.
	Label() string
}

// Pipeline is a compiled render or compute pipeline.
type Pipeline interface {
	// Label returns the debug label the pipeline was created with.
	Label() string
}

// BindGroupLayout describes the binding structure of a bind group.
type BindGroupLayout interface {
	// Label returns the debug label the layout was created with.
	Label() string
}

// BindGroup binds concrete resources to a layout.
type BindGroup interface {
	// Label returns the debug label the group was created with.
	Label() string
}

// Sampler is a texture sampler.
type Sampler interface {
	// Label returns the debug label the sampler was created with.
	Label() string
}

// TextureDesc describes parameters for creating a texture.
type TextureDesc struct {
	// Label is an optional debug label.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage
}

// BindingKind selects the resource type bound at a layout slot.
type BindingKind uint8

const (
	// BindingUniformBuffer is a uniform buffer binding.
	BindingUniformBuffer BindingKind = iota + 1

	// BindingStorageBuffer is a read-write storage buffer binding.
	BindingStorageBuffer

	// BindingReadOnlyStorageBuffer is a read-only storage buffer binding.
	BindingReadOnlyStorageBuffer

	// BindingSampledTexture is a sampled texture binding.
	BindingSampledTexture

	// BindingStorageTexture is a write-only storage texture binding.
	BindingStorageTexture

	// BindingSampler is a sampler binding.
	BindingSampler
)

// BindingLayoutEntry describes a single slot in a bind group layout.
type BindingLayoutEntry struct {
	// Binding is the binding index.
	Binding uint32

	// Kind is the resource type bound at this index.
	Kind BindingKind

	// Visibility is the shader stage mask.
	Visibility gputypes.ShaderStage

	// StorageFormat is the texel format for storage texture bindings.
	StorageFormat gputypes.TextureFormat
}

// BindGroupLayoutDesc describes a bind group layout.
type BindGroupLayoutDesc struct {
	// Label is an optional debug label.
	Label string

	// Entries defines the bindings in this layout.
	Entries []BindingLayoutEntry
}

// BindGroupEntry binds one resource. Exactly one of Buffer, Texture, or
// Sampler is set, matching the layout's BindingKind at the same index.
type BindGroupEntry struct {
	// Binding is the binding index.
	Binding uint32

	// Buffer is the buffer to bind, for buffer bindings.
	Buffer Buffer

	// Texture is the texture to bind, for texture bindings.
	Texture Texture

	// Sampler is the sampler to bind, for sampler bindings.
	Sampler Sampler
}

// BindGroupDesc describes a bind group.
type BindGroupDesc struct {
	// Label is an optional debug label.
	Label string

	// Layout is the bind group layout.
	Layout BindGroupLayout

	// Entries are the resource bindings.
	Entries []BindGroupEntry
}

// RenderPipelineDesc describes a render pipeline.
type RenderPipelineDesc struct {
	// Label is an optional debug label.
	Label string

	// Shader contains both the vertex and fragment entry points.
	Shader ShaderModule

	// VertexEntry is the vertex shader entry point name.
	VertexEntry string

	// FragmentEntry is the fragment shader entry point name.
	FragmentEntry string

	// Layouts are the bind group layouts used by the pipeline.
	Layouts []BindGroupLayout

	// VertexBuffers are the vertex buffer layouts in slot order. Empty
	// means the vertex shader derives everything from the vertex index.
	VertexBuffers []gputypes.VertexBufferLayout

	// ColorFormats are the formats of the color attachments, in slot order.
	ColorFormats []gputypes.TextureFormat

	// DepthFormat is the depth attachment format, or zero for no depth.
	DepthFormat gputypes.TextureFormat

	// DepthWrite enables depth writes when a depth attachment is present.
	DepthWrite bool

	// DepthCompare is the depth test function when a depth attachment is
	// present. Zero value means CompareFunctionAlways.
	DepthCompare gputypes.CompareFunction
}

// ComputePipelineDesc describes a compute pipeline.
type ComputePipelineDesc struct {
	// Label is an optional debug label.
	Label string

	// Shader contains the compute entry point.
	Shader ShaderModule

	// EntryPoint is the compute shader entry point name.
	EntryPoint string

	// Layouts are the bind group layouts used by the pipeline.
	Layouts []BindGroupLayout
}

// ColorAttachment is one color target of a render pass.
type ColorAttachment struct {
	// View is the texture rendered into.
	View Texture

	// LoadOp specifies what happens to the attachment at pass start.
	LoadOp gputypes.LoadOp

	// StoreOp specifies what happens to the attachment at pass end.
	StoreOp gputypes.StoreOp

	// Clear is the clear color, used when LoadOp is LoadOpClear.
	Clear gputypes.Color
}

// DepthAttachment is the depth target of a render pass.
type DepthAttachment struct {
	// View is the depth texture.
	View Texture

	// LoadOp specifies what happens to depth at pass start.
	LoadOp gputypes.LoadOp

	// StoreOp specifies what happens to depth at pass end.
	StoreOp gputypes.StoreOp

	// ClearDepth is the clear value, used when LoadOp is LoadOpClear.
	ClearDepth float32
}

// RenderPassDesc describes one render encoding scope.
type RenderPassDesc struct {
	// Label is an optional debug label.
	Label string

	// Colors are the color attachments in slot order.
	Colors []ColorAttachment

	// Depth is the optional depth attachment.
	Depth *DepthAttachment
}

// RenderPass records draw commands inside a render encoding scope.
// A pass is NOT safe for concurrent use and must be ended exactly once.
type RenderPass interface {
	// SetPipeline binds a render pipeline for subsequent draws.
	SetPipeline(p Pipeline)

	// SetBindGroup binds a resource group at the given index.
	SetBindGroup(index uint32, bg BindGroup)

	// SetVertexBuffer binds a vertex buffer to a slot.
	SetVertexBuffer(slot uint32, buf Buffer, offset uint64)

	// SetIndexBuffer binds the index buffer for indexed draws.
	SetIndexBuffer(buf Buffer, offset uint64)

	// Draw draws primitives.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// DrawIndexed draws indexed primitives.
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)

	// End completes the encoding scope.
	End()
}

// ComputePass records dispatches inside a compute encoding scope.
type ComputePass interface {
	// SetPipeline binds a compute pipeline for subsequent dispatches.
	SetPipeline(p Pipeline)

	// SetBindGroup binds a resource group at the given index.
	SetBindGroup(index uint32, bg BindGroup)

	// Dispatch dispatches workgroups.
	Dispatch(x, y, z uint32)

	// End completes the encoding scope.
	End()
}

// BlitPass records texture copies inside a transfer encoding scope.
type BlitPass interface {
	// Copy copies the full extent of src into dst. Both textures must
	// share the same dimensions and format.
	Copy(src, dst Texture)

	// End completes the encoding scope.
	End()
}

// FrameEncoder records one frame of GPU work as a single linear command
// stream. Encoding scopes must not overlap: each Begin* must be ended
// before the next begins, and Submit must follow the last End.
type FrameEncoder interface {
	// BeginRenderPass begins a render encoding scope.
	BeginRenderPass(desc *RenderPassDesc) RenderPass

	// BeginComputePass begins a compute encoding scope.
	BeginComputePass(label string) ComputePass

	// BeginBlitPass begins a transfer encoding scope.
	BeginBlitPass(label string) BlitPass

	// Submit finishes encoding and submits the command stream. A submit
	// failure is fatal to the frame; the stream is never retried.
	Submit() error

	// Discard abandons the command stream without submitting.
	Discard()
}

// Device creates GPU resources and frame encoders.
//
// Resource lifecycle: resources are created via Create* methods and must
// be explicitly destroyed via the matching Destroy* methods. Destroying a
// resource while a submitted frame still references it is undefined
// behavior.
type Device interface {
	// CreateTexture creates a GPU texture.
	CreateTexture(desc TextureDesc) (Texture, error)

	// DestroyTexture releases a texture created by CreateTexture.
	DestroyTexture(t Texture)

	// WriteTexture uploads pixel data covering the full texture extent.
	WriteTexture(t Texture, data []byte)

	// CreateBuffer creates a GPU buffer.
	CreateBuffer(label string, size uint64, usage gputypes.BufferUsage) (Buffer, error)

	// DestroyBuffer releases a buffer.
	DestroyBuffer(b Buffer)

	// WriteBuffer writes data into a buffer at the given offset.
	WriteBuffer(b Buffer, offset uint64, data []byte)

	// CreateShaderModule compiles WGSL source into a shader module.
	CreateShaderModule(label, wgsl string) (ShaderModule, error)

	// DestroyShaderModule releases a shader module.
	DestroyShaderModule(m ShaderModule)

	// CreateSampler creates a linear-filtering sampler.
	CreateSampler(label string) (Sampler, error)

	// DestroySampler releases a sampler.
	DestroySampler(s Sampler)

	// CreateBindGroupLayout creates a bind group layout.
	CreateBindGroupLayout(desc BindGroupLayoutDesc) (BindGroupLayout, error)

	// DestroyBindGroupLayout releases a bind group layout.
	DestroyBindGroupLayout(l BindGroupLayout)

	// CreateBindGroup creates a bind group.
	CreateBindGroup(desc BindGroupDesc) (BindGroup, error)

	// DestroyBindGroup releases a bind group.
	DestroyBindGroup(bg BindGroup)

	// CreateRenderPipeline creates a render pipeline.
	CreateRenderPipeline(desc RenderPipelineDesc) (Pipeline, error)

	// CreateComputePipeline creates a compute pipeline.
	CreateComputePipeline(desc ComputePipelineDesc) (Pipeline, error)

	// DestroyPipeline releases a render or compute pipeline.
	DestroyPipeline(p Pipeline)

	// BeginFrame begins encoding one frame of GPU work.
	BeginFrame(label string) (FrameEncoder, error)
}
