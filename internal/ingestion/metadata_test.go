package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetadata(t *testing.T) {
	m := NewMetadata("Backend engineer in Zürich", "https://boards.greenhouse.io/acme/jobs/1")

	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/1", m.URL)
	assert.Equal(t, 26, m.Length, "length counts characters, not bytes")
	assert.Len(t, m.Hash, 64)
	assert.Equal(t, computeHash("Backend engineer in Zürich"), m.Hash)

	_, err := time.Parse(time.RFC3339, m.Timestamp)
	assert.NoError(t, err)
}

func TestComputeHash_ContentAddressed(t *testing.T) {
	assert.Equal(t, computeHash("same posting"), computeHash("same posting"))
	assert.NotEqual(t, computeHash("posting A"), computeHash("posting B"))
	// sha256 of the empty string
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", computeHash(""))
}

func TestMetadata_ToJSON(t *testing.T) {
	m := &Metadata{
		URL:       "https://jobs.lever.co/acme/1",
		Timestamp: "2024-01-01T00:00:00Z",
		Hash:      "abcd1234",
		Platform:  "lever",
		Length:    1200,
		Rendered:  true,
	}
	out, err := m.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"url": "https://jobs.lever.co/acme/1",
		"timestamp": "2024-01-01T00:00:00Z",
		"hash": "abcd1234",
		"platform": "lever",
		"length": 1200,
		"rendered": true
	}`, string(out))
}

func TestMetadata_ToJSON_PastedText(t *testing.T) {
	out, err := NewMetadata("pasted", "").ToJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(out), `"url"`)
	assert.NotContains(t, string(out), `"platform"`)
	assert.NotContains(t, string(out), `"rendered"`)
	assert.Contains(t, string(out), `"length": 6`)
}
