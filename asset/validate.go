// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package asset

import (
	"errors"
	"fmt"
)

// Validation errors, matchable with errors.Is.
var (
	ErrDuplicateResource = errors.New("duplicate resource declaration")
	ErrDuplicatePass     = errors.New("duplicate pass declaration")
	ErrMultipleProducers = errors.New("output produced by more than one pass")
	ErrDanglingInput     = errors.New("input has no producer")
	ErrCycle             = errors.New("pass dependency cycle")
)

// Validate checks the pipeline's structural invariants: unique resource
// and pass names, at most one producer per non-reserved output, no
// dangling inputs, and an acyclic dependency graph. It returns the first
// violation found; a pipeline that validates is guaranteed to
// topologically sort.
//
// Validation is structural and ignores the Enabled flag: a disabled pass
// still occupies its declaration slot and its outputs still count, so
// toggling passes at runtime cannot turn a valid asset invalid.
func (p *Pipeline) Validate() error {
	seen := make(map[string]bool, len(p.Resources))
	for _, r := range p.Resources {
		if seen[r.Name] {
			return fmt.Errorf("asset %q: %w: %q", p.Name, ErrDuplicateResource, r.Name)
		}
		seen[r.Name] = true
	}

	passNames := make(map[string]bool, len(p.Passes))
	producers := make(map[string]string) // output name → producing pass
	for _, pass := range p.Passes {
		if passNames[pass.Name] {
			return fmt.Errorf("asset %q: %w: %q", p.Name, ErrDuplicatePass, pass.Name)
		}
		passNames[pass.Name] = true
		for _, out := range pass.Outputs {
			if IsReserved(out) {
				continue
			}
			if prev, ok := producers[out]; ok {
				return fmt.Errorf("asset %q: %w: %q written by %q and %q",
					p.Name, ErrMultipleProducers, out, prev, pass.Name)
			}
			producers[out] = pass.Name
		}
	}

	for _, pass := range p.Passes {
		for _, in := range pass.Inputs {
			if IsReserved(in) {
				continue
			}
			if _, ok := producers[in]; ok {
				continue
			}
			if p.Resource(in) != nil {
				// Declared but unproduced: supplied by external code
				// under its declared name, resolved at build time.
				continue
			}
			return fmt.Errorf("asset %q: %w: pass %q reads %q",
				p.Name, ErrDanglingInput, pass.Name, in)
		}
	}

	order, err := p.TopologicalSort()
	if err != nil {
		return fmt.Errorf("asset %q: %w", p.Name, err)
	}
	if len(order) != len(p.Passes) {
		return fmt.Errorf("asset %q: %w", p.Name, ErrCycle)
	}
	return nil
}

// TopologicalSort orders passes so every producer precedes its consumers,
// breaking ties by declaration order (Kahn's algorithm with a FIFO
// zero-in-degree queue). Two edge kinds exist:
//
//   - producer(output) → consumer(input), for every non-reserved name;
//   - consecutive writers of the same name in declaration order, reserved
//     names included, so passes sharing an output (e.g. several passes
//     layering onto "$backbuffer") keep last-writer-wins determinism.
//
// The returned slice holds indices into p.Passes. A result shorter than
// len(p.Passes) means the graph has a cycle; Validate surfaces that as
// ErrCycle.
func (p *Pipeline) TopologicalSort() ([]int, error) {
	n := len(p.Passes)
	adj := make([][]int, n)
	inDegree := make([]int, n)
	hasEdge := make(map[[2]int]bool)

	addEdge := func(from, to int) {
		if from == to || hasEdge[[2]int{from, to}] {
			return
		}
		hasEdge[[2]int{from, to}] = true
		adj[from] = append(adj[from], to)
		inDegree[to]++
	}

	producers := make(map[string]int, n)
	writers := make(map[string][]int) // all writers in declaration order
	for i, pass := range p.Passes {
		for _, out := range pass.Outputs {
			if !IsReserved(out) {
				producers[out] = i
			}
			writers[out] = append(writers[out], i)
		}
	}

	for i, pass := range p.Passes {
		for _, in := range pass.Inputs {
			if IsReserved(in) {
				continue
			}
			if prod, ok := producers[in]; ok {
				addEdge(prod, i)
			}
		}
	}

	// Shared outputs execute in declaration order.
	for _, ws := range writers {
		for i := 1; i < len(ws); i++ {
			addEdge(ws[i-1], ws[i])
		}
	}

	var queue []int
	for i := 0; i < n; i++ {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, n)
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		for _, j := range adj[i] {
			inDegree[j]--
			if inDegree[j] == 0 {
				queue = append(queue, j)
			}
		}
	}

	if len(order) != n {
		return order, ErrCycle
	}
	return order, nil
}
