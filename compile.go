// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"context"
	"log/slog"
)

// Compile computes pass liveness and resource lifetimes. It is a
// deterministic single scan over the declared structure — dependencies
// only flow forward through producer edges, so no fixpoint iteration is
// needed:
//
//  1. Every pass starts at refCount 1 if side-effecting, else 0.
//  2. Every resource's refCount is its number of reading passes.
//  3. Each read resource adds its refCount to its producer pass.
//  4. Passes left at refCount 0 are dead: retained in the structure so
//     indices stay stable, skipped by Execute.
//  5. For every live pass, lastUser of each touched resource advances to
//     that pass's index — the transient deallocation point.
//
// Liveness propagates exactly one hop: a producer is kept alive by the
// existence of any reader, even a reader that is itself culled. Full
// transitive dead-code elimination would require a backward walk; render
// graphs are shallow enough that the retained work is negligible and the
// single scan stays cheap. Callers relying on culling must not chain dead
// readers behind live-looking producers.
//
// Compile is idempotent and must be re-run after any AddPass or Import.
func (g *Graph) Compile() {
	for _, p := range g.passes {
		if p.sideEffect {
			p.refCount = 1
		} else {
			p.refCount = 0
		}
	}
	g.eachResource(func(_ int32, r *resource) {
		r.refCount = 0
		r.lastUser = none
	})

	// Count readers.
	for _, p := range g.passes {
		for _, h := range p.reads {
			g.resources[h.index].refCount++
		}
	}

	// Propagate to producers: one hop, by design.
	g.eachResource(func(_ int32, r *resource) {
		if r.refCount > 0 && r.producer != none {
			g.passes[r.producer].refCount += r.refCount
		}
	})

	// Lifetime bounds over live passes only.
	for i, p := range g.passes {
		if p.refCount == 0 {
			continue
		}
		for _, h := range p.reads {
			g.touch(h, int32(i))
		}
		for _, h := range p.writes {
			g.touch(h, int32(i))
		}
	}

	g.compiled = true

	if log := Logger(); log.Enabled(context.Background(), slog.LevelDebug) {
		for i, p := range g.passes {
			if p.refCount == 0 {
				log.Debug("framegraph: pass culled", "pass", p.name, "index", i)
			}
		}
	}
}

func (g *Graph) touch(h Handle, passIndex int32) {
	r := g.resources[h.index]
	if passIndex > r.lastUser {
		r.lastUser = passIndex
	}
}
