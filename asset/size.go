// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package asset

import (
	"strconv"
	"strings"

	"github.com/gogpu/framegraph"
)

// SizeScreen is the size policy resolving to the current target size.
const SizeScreen = "screen"

// ParseSize resolves a size policy string against the current target
// dimensions. "screen" (or empty) yields screenW×screenH; "WxH" parses
// explicit dimensions, e.g. "512x512". Malformed strings fall back to
// screen size with a warning.
func ParseSize(s string, screenW, screenH uint32) (uint32, uint32) {
	if s == "" || s == SizeScreen {
		return screenW, screenH
	}

	ws, hs, ok := strings.Cut(s, "x")
	if ok {
		w, werr := strconv.ParseUint(ws, 10, 32)
		h, herr := strconv.ParseUint(hs, 10, 32)
		if werr == nil && herr == nil && w > 0 && h > 0 {
			return uint32(w), uint32(h)
		}
	}

	framegraph.Logger().Warn("asset: malformed size policy, using screen size",
		"size", s, "width", screenW, "height", screenH)
	return screenW, screenH
}

// SizeName formats explicit dimensions as a "WxH" policy string.
func SizeName(w, h uint32) string {
	return strconv.FormatUint(uint64(w), 10) + "x" + strconv.FormatUint(uint64(h), 10)
}
