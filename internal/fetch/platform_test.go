package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected Platform
	}{
		{"https://job-boards.greenhouse.io/doordashusa/jobs/7063751", PlatformGreenhouse},
		{"https://boards.greenhouse.io/company/jobs/123", PlatformGreenhouse},
		{"https://jobs.lever.co/company/job-id", PlatformLever},
		{"https://company.wd5.myworkdayjobs.com/en-US/External", PlatformWorkday},
		{"https://www.linkedin.com/jobs/view/123", PlatformLinkedIn},
		{"https://uk.indeed.com/viewjob?jk=abc", PlatformIndeed},
		{"https://example.com/jobs", PlatformUnknown},
		{"https://notgreenhouse.io.example.com/jobs", PlatformUnknown},
		{"://bad", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectPlatform(tt.url))
		})
	}
}

func TestRendersClientSide(t *testing.T) {
	assert.True(t, RendersClientSide(PlatformWorkday))
	assert.True(t, RendersClientSide(PlatformLinkedIn))
	assert.False(t, RendersClientSide(PlatformGreenhouse))
	assert.False(t, RendersClientSide(PlatformUnknown))
}
