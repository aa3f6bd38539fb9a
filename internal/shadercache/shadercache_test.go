// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shadercache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/gogpu/framegraph/device"
)

const wgslA = "@vertex fn vs() -> @builtin(position) vec4f { return vec4f(0); }"
const wgslB = "@fragment fn fs() -> @location(0) vec4f { return vec4f(1); }"

func TestCacheReusesModules(t *testing.T) {
	dev := device.NewNullDevice()
	c := New()

	first, err := c.Module(dev, "a", wgslA)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Module(dev, "a", wgslA)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("identical source compiled twice")
	}

	other, err := c.Module(dev, "b", wgslB)
	if err != nil {
		t.Fatal(err)
	}
	if other == first {
		t.Error("different sources shared a module")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 2 {
		t.Errorf("stats = %d hits / %d misses, want 1/2", hits, misses)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	// One compile per distinct source.
	compiles := 0
	for _, e := range dev.Events() {
		if e.Op == "create_shader" {
			compiles++
		}
	}
	if compiles != 2 {
		t.Errorf("device saw %d compiles, want 2", compiles)
	}
}

func TestCacheConcurrent(t *testing.T) {
	dev := device.NewNullDevice()
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 32; j++ {
				src := fmt.Sprintf("// variant %d\n%s", j%4, wgslA)
				if _, err := c.Module(dev, "v", src); err != nil {
					t.Error(err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 4 {
		t.Errorf("Len = %d, want 4", c.Len())
	}
}

func TestCachePurge(t *testing.T) {
	dev := device.NewNullDevice()
	c := New()

	if _, err := c.Module(dev, "a", wgslA); err != nil {
		t.Fatal(err)
	}
	c.Purge(dev)

	if c.Len() != 0 {
		t.Errorf("Len after Purge = %d, want 0", c.Len())
	}
	destroyed := false
	for _, e := range dev.Events() {
		if e.Op == "destroy_shader" {
			destroyed = true
		}
	}
	if !destroyed {
		t.Error("Purge did not destroy modules")
	}
}
