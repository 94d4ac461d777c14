package picker

import "unicode/utf8"

const ellipsis = "…"

// truncate shortens s to at most width runes. A cut string ends in an
// ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	if width == 1 {
		return ellipsis
	}
	return string(runes[:width-1]) + ellipsis
}

// truncateName shortens a display name so that name+suffix fits in width.
// The suffix, the folder slash, is never cut unless nothing else fits.
func truncateName(name, suffix string, width int) string {
	if utf8.RuneCountInString(name+suffix) <= width {
		return name + suffix
	}
	room := width - utf8.RuneCountInString(suffix)
	if room < 2 {
		return truncate(name+suffix, width)
	}
	return truncate(name, room) + suffix
}
