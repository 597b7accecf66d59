package stream

import "regexp"

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// FirstURL returns the first http(s) URL in text, or "".
func FirstURL(text string) string {
	return urlPattern.FindString(text)
}
