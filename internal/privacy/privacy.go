// Package privacy scrubs sensitive data (credentials, coordinates, tokens)
// out of log lines and subprocess output before they reach structured logs.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

var (
	urlPattern   = regexp.MustCompile(`\w+://\S+`)
	gpsPattern   = regexp.MustCompile(`-?\d{1,3}\.\d+,-?\d{1,3}\.\d+`)
	tokenPattern = regexp.MustCompile(`\b[A-Za-z0-9]{8,}\b`)
)

// ScrubMessage removes URLs, GPS coordinates and API-token-shaped strings
// from a log message, replacing each with a stable, non-identifying
// placeholder. It is applied to the system-audio capture tool's stderr
// (internal/recording) before those lines are logged.
func ScrubMessage(msg string) string {
	if msg == "" {
		return msg
	}

	msg = gpsPattern.ReplaceAllString(msg, "[LAT],[LON]")
	msg = tokenPattern.ReplaceAllStringFunc(msg, scrubToken)
	msg = urlPattern.ReplaceAllStringFunc(msg, anonymizeURL)
	return msg
}

// scrubToken replaces the match with [TOKEN] only when it looks like an
// opaque credential: a mix of letters and digits, not a plain word.
func scrubToken(match string) string {
	hasDigit, hasLetter := false, false
	for _, r := range match {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	if hasDigit && hasLetter {
		return "[TOKEN]"
	}
	return match
}

// anonymizeURL replaces a URL with a stable, content-addressed placeholder
// of the form "url-<hash>" so operators can correlate repeated occurrences
// in logs without ever seeing the host, path or credentials.
func anonymizeURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "url-" + hex.EncodeToString(sum[:])[:12]
}
