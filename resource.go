// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"github.com/gogpu/framegraph/device"
)

// TextureDesc describes a graph-managed texture. It is an alias for
// device.TextureDesc so descriptors flow to the device without conversion.
type TextureDesc = device.TextureDesc

// Handle identifies a resource within one Graph. The zero value is not
// valid; handles are obtained from Builder.Create, Graph.Import, or by
// passing them between passes.
type Handle struct {
	index int32
}

// InvalidHandle is a handle referring to no resource.
var InvalidHandle = Handle{index: -1}

// Valid reports whether the handle refers to a resource.
func (h Handle) Valid() bool { return h.index > 0 }

// none is the sentinel pass/resource index meaning "no pass".
const none int32 = -1

// resource is one entry in the graph's resource registry. Transient
// resources are owned by the graph: texture is nil outside the
// [producer, lastUser] execution window. Imported resources keep the
// caller's texture for the whole frame.
type resource struct {
	name     string
	desc     TextureDesc
	imported bool
	producer int32 // pass index that creates it; none if imported
	refCount int32 // number of reading passes, set by Compile
	lastUser int32 // last live pass touching it, set by Compile
	texture  device.Texture
}

// ResourceInfo is a read-only snapshot of one registry entry, for tests
// and editor tooling.
type ResourceInfo struct {
	// Name is the diagnostic name the resource was declared with.
	Name string

	// Desc is the texture descriptor.
	Desc TextureDesc

	// Imported reports whether the texture is externally owned.
	Imported bool

	// Producer is the index of the creating pass, or -1.
	Producer int

	// RefCount is the number of reading passes after Compile.
	RefCount int

	// LastUser is the index of the last live pass touching the resource
	// after Compile, or -1.
	LastUser int

	// Allocated reports whether a backing texture is currently present.
	Allocated bool
}

// newResource appends a registry entry and returns its handle. Index 0 is
// reserved so that the zero Handle stays invalid.
func (g *Graph) newResource(r *resource) Handle {
	if len(g.resources) == 0 {
		g.resources = append(g.resources, nil) // slot 0 reserved
	}
	g.resources = append(g.resources, r)
	return Handle{index: int32(len(g.resources) - 1)}
}

func (g *Graph) resourceAt(h Handle) *resource {
	if !h.Valid() || int(h.index) >= len(g.resources) {
		panic("framegraph: invalid resource handle")
	}
	return g.resources[h.index]
}

// Resource returns a snapshot of the resource behind h.
// It panics if h is invalid: an uninitialized handle is a bug in the
// calling pass, not recoverable input.
func (g *Graph) Resource(h Handle) ResourceInfo {
	r := g.resourceAt(h)
	return ResourceInfo{
		Name:      r.name,
		Desc:      r.desc,
		Imported:  r.imported,
		Producer:  int(r.producer),
		RefCount:  int(r.refCount),
		LastUser:  int(r.lastUser),
		Allocated: r.texture != nil,
	}
}

// Texture returns the current backing texture of h, or nil when the
// transient is outside its lifetime window. Encode callbacks use this to
// bind graph resources; the backing is guaranteed non-nil for every
// resource the running pass declared via Read or Write.
func (g *Graph) Texture(h Handle) device.Texture {
	return g.resourceAt(h).texture
}

// Import registers an externally owned texture under the given name and
// returns its handle. The graph never allocates or frees an imported
// texture; it participates in reference counting and lifetime bookkeeping
// only to keep pass liveness correct.
func (g *Graph) Import(name string, tex device.Texture, desc TextureDesc) Handle {
	g.compiled = false
	return g.newResource(&resource{
		name:     name,
		desc:     desc,
		imported: true,
		producer: none,
		lastUser: none,
		texture:  tex,
	})
}

// UpdateImport swaps the backing texture of an imported resource. Used
// for swap-chain style imports whose texture changes every frame while
// the graph structure stays the same. Panics if h does not refer to an
// imported resource.
func (g *Graph) UpdateImport(h Handle, tex device.Texture) {
	r := g.resourceAt(h)
	if !r.imported {
		panic("framegraph: UpdateImport on non-imported resource " + r.name)
	}
	r.texture = tex
}
