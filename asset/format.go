// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package asset

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph"
)

// ParseFormat maps a named pixel-format string from a pipeline asset to
// the native format. Unrecognized names fall back to RGBA8 with a
// warning; a typo in an asset file should degrade the image, not kill
// the pipeline.
func ParseFormat(s string) gputypes.TextureFormat {
	switch s {
	case "R8":
		return gputypes.TextureFormatR8Unorm
	case "R32Float":
		return gputypes.TextureFormatR32Float
	case "RGBA8", "":
		return gputypes.TextureFormatRGBA8Unorm
	case "BGRA8":
		return gputypes.TextureFormatBGRA8Unorm
	case "RGBA16Float":
		return gputypes.TextureFormatRGBA16Float
	case "RGBA32Float":
		return gputypes.TextureFormatRGBA32Float
	case "Depth32Float":
		return gputypes.TextureFormatDepth32Float
	case "Depth16":
		return gputypes.TextureFormatDepth16Unorm
	default:
		framegraph.Logger().Warn("asset: unknown pixel format, using RGBA8", "format", s)
		return gputypes.TextureFormatRGBA8Unorm
	}
}

// FormatName is the inverse of ParseFormat for the supported set. Formats
// outside the set serialize as "RGBA8".
func FormatName(f gputypes.TextureFormat) string {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return "R8"
	case gputypes.TextureFormatR32Float:
		return "R32Float"
	case gputypes.TextureFormatRGBA8Unorm:
		return "RGBA8"
	case gputypes.TextureFormatBGRA8Unorm:
		return "BGRA8"
	case gputypes.TextureFormatRGBA16Float:
		return "RGBA16Float"
	case gputypes.TextureFormatRGBA32Float:
		return "RGBA32Float"
	case gputypes.TextureFormatDepth32Float:
		return "Depth32Float"
	case gputypes.TextureFormatDepth16Unorm:
		return "Depth16"
	default:
		return "RGBA8"
	}
}

// IsDepthFormat reports whether f is a depth(-stencil) format, which
// binds as a depth attachment rather than a color attachment.
func IsDepthFormat(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatDepth32Float,
		gputypes.TextureFormatDepth16Unorm,
		gputypes.TextureFormatDepth24PlusStencil8:
		return true
	default:
		return false
	}
}
