// Package fetch - platform.go detects which job board a posting URL belongs to.
package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform.
type Platform string

const (
	// PlatformGreenhouse is the Greenhouse ATS platform
	PlatformGreenhouse Platform = "greenhouse"
	// PlatformLever is the Lever ATS platform
	PlatformLever Platform = "lever"
	// PlatformWorkday is the Workday ATS platform
	PlatformWorkday Platform = "workday"
	// PlatformLinkedIn job pages usually require a login and fail prose extraction
	PlatformLinkedIn Platform = "linkedin"
	// PlatformIndeed is the Indeed job board
	PlatformIndeed Platform = "indeed"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

var platformHosts = []struct {
	platform Platform
	suffixes []string
}{
	{PlatformGreenhouse, []string{"greenhouse.io"}},
	{PlatformLever, []string{"lever.co"}},
	{PlatformWorkday, []string{"workday.com", "myworkdayjobs.com"}},
	{PlatformLinkedIn, []string{"linkedin.com"}},
	{PlatformIndeed, []string{"indeed.com"}},
}

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	for _, p := range platformHosts {
		for _, suffix := range p.suffixes {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return p.platform
			}
		}
	}
	return PlatformUnknown
}

// RendersClientSide reports whether the platform is known to ship an empty
// HTML shell, so a browser render is the only way to see the posting.
func RendersClientSide(p Platform) bool {
	return p == PlatformWorkday || p == PlatformLinkedIn
}
