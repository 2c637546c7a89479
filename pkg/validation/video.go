package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var youtubeHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
}

var shortLinkPath = regexp.MustCompile(`^/[a-zA-Z0-9_-]+$`)

// ValidateVideoURL checks that a lesson video link points at YouTube.
// Only youtube.com (including www and mobile subdomains) and youtu.be short
// links are accepted; anything else is rejected.
func ValidateVideoURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("invalid video URL")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("video URL must use http or https")
	}

	host := strings.ToLower(parsed.Hostname())
	if !youtubeHosts[host] {
		return fmt.Errorf("only youtube.com links are allowed")
	}

	if host == "youtu.be" && !shortLinkPath.MatchString(parsed.Path) {
		return fmt.Errorf("invalid youtu.be link")
	}

	return nil
}
