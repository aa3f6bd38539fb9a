// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package asset defines the declarative pipeline description: a
// serializable set of named resources and passes that the pipeline
// builder turns into a frame graph. The format is plain JSON so external
// tooling (editors, asset pipelines) can read and write it.
package asset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ReservedSigil prefixes resource names that are supplied externally
// (e.g. "$backbuffer" for the swap-chain image). Reserved names are
// exempt from producer-uniqueness and dangling-input validation.
const ReservedSigil = "$"

// IsReserved reports whether name denotes an externally supplied
// resource.
func IsReserved(name string) bool {
	return strings.HasPrefix(name, ReservedSigil)
}

// Pipeline is one complete declarative render pipeline.
type Pipeline struct {
	// Name identifies the pipeline in logs and tooling.
	Name string `json:"name"`

	// Resources are the declared texture/buffer resources.
	Resources []ResourceDecl `json:"resources"`

	// Passes are the pass declarations in declaration order. Declaration
	// order breaks ties in topological sorting and fixes the execution
	// order of passes sharing an output.
	Passes []PassDecl `json:"passes"`
}

// ResourceDecl declares one named resource.
type ResourceDecl struct {
	// Name is the unique symbolic name passes refer to.
	Name string `json:"name"`

	// Type is "texture" or "buffer".
	Type string `json:"type"`

	// Format is a named pixel format, e.g. "RGBA16Float". See ParseFormat.
	Format string `json:"format,omitempty"`

	// Size is "screen" or an explicit "WxH" such as "512x512".
	Size string `json:"size,omitempty"`
}

// PassDecl declares one pass by registry type.
type PassDecl struct {
	// Name is the unique pass name.
	Name string `json:"name"`

	// Type is the pass registry key, e.g. "geometry" or "tonemap".
	Type string `json:"type"`

	// Inputs are resource names the pass reads, in binding order.
	Inputs []string `json:"inputs,omitempty"`

	// Outputs are resource names the pass produces, in binding order.
	Outputs []string `json:"outputs,omitempty"`

	// Enabled gates instantiation; a disabled pass is skipped entirely by
	// the builder. Missing in JSON means enabled.
	Enabled bool `json:"enabled"`

	// SideEffect pins the pass live through frame-graph compilation.
	SideEffect bool `json:"sideEffect,omitempty"`

	// Config is the opaque pass-specific configuration, decoded by the
	// pass factory.
	Config json.RawMessage `json:"config,omitempty"`
}

// UnmarshalJSON decodes a pass declaration, defaulting Enabled to true
// when the field is absent so hand-written assets need not spell it out.
func (p *PassDecl) UnmarshalJSON(data []byte) error {
	type passDecl PassDecl // drop methods to avoid recursion
	aux := struct {
		Enabled *bool `json:"enabled"`
		*passDecl
	}{passDecl: (*passDecl)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Enabled = aux.Enabled == nil || *aux.Enabled
	return nil
}

// Load parses a pipeline from its JSON form.
func Load(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("asset: parse pipeline: %w", err)
	}
	return &p, nil
}

// Save serializes the pipeline to indented JSON.
func Save(p *Pipeline) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("asset: serialize pipeline %q: %w", p.Name, err)
	}
	return data, nil
}

// LoadFile reads and parses a pipeline file.
func LoadFile(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("asset: read pipeline: %w", err)
	}
	return Load(data)
}

// SaveFile serializes the pipeline and writes it to path.
func SaveFile(p *Pipeline, path string) error {
	data, err := Save(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("asset: write pipeline %q: %w", p.Name, err)
	}
	return nil
}

// Resource returns the declaration for name, or nil.
func (p *Pipeline) Resource(name string) *ResourceDecl {
	for i := range p.Resources {
		if p.Resources[i].Name == name {
			return &p.Resources[i]
		}
	}
	return nil
}

// Pass returns the declaration for name, or nil.
func (p *Pipeline) Pass(name string) *PassDecl {
	for i := range p.Passes {
		if p.Passes[i].Name == name {
			return &p.Passes[i]
		}
	}
	return nil
}
