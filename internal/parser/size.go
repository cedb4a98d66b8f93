package parser

import "regexp"

// sizeRe matches "<w> x <h>" with optional inch marks after either number.
var sizeRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*["'“”]?\s*[Xx]\s*(\d+(?:\.\d+)?)\s*["'“”]?`)

// ParseSize extracts width and height from a free-form size string such as
// `12" x 8"` or `12.5 X 8`. The numbers are returned exactly as written.
// ok is false when no width-by-height pair is present.
func ParseSize(s string) (width, height string, ok bool) {
	m := sizeRe.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
