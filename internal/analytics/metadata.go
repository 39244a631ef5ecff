package analytics

import (
	"net/http"
	"strings"
)

// RequestMetadata carries the raw client attributes captured from the
// inbound request before the response is written. Parsing and geo
// enrichment happen later, off the response path.
type RequestMetadata struct {
	IP             string
	UserAgent      string
	Referer        string
	AcceptLanguage string
}

// ExtractMetadata captures the redirect request's client metadata.
// IP derivation matches the rate limiter: first X-Forwarded-For entry,
// else X-Real-IP, else empty.
func ExtractMetadata(r *http.Request) RequestMetadata {
	return RequestMetadata{
		IP:             clientIP(r),
		UserAgent:      r.Header.Get("User-Agent"),
		Referer:        r.Header.Get("Referer"),
		AcceptLanguage: r.Header.Get("Accept-Language"),
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return ""
}
