package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \n  \n  ", ""},
		{"collapses inner spaces", "Python    developer   with  AWS", "Python developer with AWS"},
		{"headings lose indentation", "# Experience\n   ## Acme Corp", "# Experience\n## Acme Corp"},
		{"nested bullets keep indentation", "- Backend\n  - Go services\n* Frontend", "- Backend\n  - Go services\n* Frontend"},
		{"indented prose", "Summary\n    Built   data   pipelines", "Summary\n    Built data pipelines"},
		{"blank runs collapse", "Skills\n\n\n\n\nEducation", "Skills\n\nEducation"},
		{"line endings", "One\r\nTwo\rThree\nFour", "One\nTwo\nThree\nFour"},
		{"unicode survives", "Zürich   🚀  office", "Zürich 🚀 office"},
		{"page breaks and cv bullets", "Jane Doe\r\nSenior Engineer\f\n• Led   migration to Go\n   · Mentored 4 engineers   \n",
			"Jane Doe\nSenior Engineer\n\n• Led   migration to Go\n   · Mentored 4 engineers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCVFromText(t *testing.T) {
	assert.Equal(t, "Python developer\nSQL", CVFromText("  Python   developer  \r\nSQL\n\n\n"))
	assert.Empty(t, CVFromText(" \n\t "))
}

func TestJobFromFile_Verbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	content := "Senior Go Engineer\r\n\r\n  Must know   Kubernetes.  "
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	job, err := JobFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Senior Go Engineer\n\n  Must know   Kubernetes.  ", job.Text)
	assert.Equal(t, "manual", job.Source)
	assert.Len(t, job.Metadata.Hash, 64)
}

func TestJobFromFile_FileNotFound(t *testing.T) {
	_, err := JobFromFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}
