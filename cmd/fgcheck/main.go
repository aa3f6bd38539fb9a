// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command fgcheck validates pipeline asset files without a GPU.
//
// It loads each JSON asset, runs structural validation and the
// topological sort, then dry-builds the graph against the recording null
// device with the built-in pass library registered. The exit code is
// non-zero if any file fails, so it slots into CI next to go vet.
//
// Usage:
//
//	fgcheck [-v] [-order] pipeline.json...
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/asset"
	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/framegraph/internal/shadercache"
	"github.com/gogpu/framegraph/passes"
	"github.com/gogpu/framegraph/pipeline"
)

func main() {
	verbose := flag.Bool("v", false, "log the build steps")
	showOrder := flag.Bool("order", false, "print the execution order")
	width := flag.Uint("width", 1920, "screen-sized resource width")
	height := flag.Uint("height", 1080, "screen-sized resource height")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: fgcheck [-v] [-order] pipeline.json...")
		os.Exit(2)
	}
	if *verbose {
		framegraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	failed := 0
	for _, path := range flag.Args() {
		if err := check(path, *showOrder, uint32(*width), uint32(*height)); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("%s: ok\n", path)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func check(path string, showOrder bool, width, height uint32) error {
	p, err := asset.LoadFile(path)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	order, err := p.TopologicalSort()
	if err != nil {
		return err
	}
	if showOrder {
		for i, idx := range order {
			fmt.Printf("  %2d. %s (%s)\n", i+1, p.Passes[idx].Name, p.Passes[idx].Type)
		}
	}

	// Dry-build against the null device to catch unknown pass types,
	// unresolved inputs, and bad configs.
	dev := device.NewNullDevice()
	rc := &pipeline.RenderContext{
		Device:  dev,
		Host:    device.NullHandle{},
		Shaders: shadercache.New(),
		Camera:  pipeline.NewCamera(),
		Scratch: pipeline.NewFrameScratch(),
		Width:   width,
		Height:  height,
	}
	reg := pipeline.NewRegistry()
	passes.RegisterBuiltins(reg)
	b := pipeline.NewBuilder(reg, rc)

	// Reserved names referenced by the asset become imported stand-ins.
	imported := map[string]bool{}
	importReserved := func(name string) {
		if !asset.IsReserved(name) || imported[name] {
			return
		}
		imported[name] = true
		tex, _ := dev.CreateTexture(device.TextureDesc{Label: name, Width: width, Height: height})
		b.ImportTexture(name, tex, device.TextureDesc{Width: width, Height: height})
	}
	for _, pd := range p.Passes {
		for _, in := range pd.Inputs {
			importReserved(in)
		}
		for _, out := range pd.Outputs {
			importReserved(out)
		}
	}

	if _, err := b.Build(p, width, height); err != nil {
		return err
	}
	return nil
}
