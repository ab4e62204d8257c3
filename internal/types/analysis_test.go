package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisResult_JSONUnmarshaling(t *testing.T) {
	jsonInput := `{
		"match_score": 72,
		"shared_skills": ["Python", "SQL"],
		"missing_keywords": ["Kubernetes"],
		"role_relevance": "Strong backend background."
	}`

	var result AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(jsonInput), &result))

	assert.Equal(t, 72, result.MatchScore)
	assert.Equal(t, []string{"Python", "SQL"}, result.SharedSkills)
	assert.Equal(t, []string{"Kubernetes"}, result.MissingKeywords)
	assert.Equal(t, "Strong backend background.", result.RoleRelevance)
	assert.NoError(t, result.Validate())
}

func TestAnalysisResult_Validate(t *testing.T) {
	tests := []struct {
		name    string
		result  AnalysisResult
		wantErr bool
	}{
		{"lower bound", AnalysisResult{MatchScore: 0, SharedSkills: []string{}, MissingKeywords: []string{}}, false},
		{"upper bound", AnalysisResult{MatchScore: 100, SharedSkills: []string{}, MissingKeywords: []string{}}, false},
		{"above range", AnalysisResult{MatchScore: 101, SharedSkills: []string{}, MissingKeywords: []string{}}, true},
		{"below range", AnalysisResult{MatchScore: -1, SharedSkills: []string{}, MissingKeywords: []string{}}, true},
		{"nil skills", AnalysisResult{MatchScore: 50, MissingKeywords: []string{}}, true},
		{"blank skill", AnalysisResult{MatchScore: 50, SharedSkills: []string{""}, MissingKeywords: []string{}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnalyzeRequest_Validate(t *testing.T) {
	assert.NoError(t, (&AnalyzeRequest{JobText: "Go developer"}).Validate())
	assert.NoError(t, (&AnalyzeRequest{JobURL: "https://jobs.example.com/1"}).Validate())
	assert.Error(t, (&AnalyzeRequest{}).Validate())
	assert.Error(t, (&AnalyzeRequest{JobURL: "not a url"}).Validate())
}

func TestFetchJobRequest_Validate(t *testing.T) {
	assert.NoError(t, (&FetchJobRequest{URL: "https://example.com/job"}).Validate())
	assert.Error(t, (&FetchJobRequest{URL: ""}).Validate())
	assert.Error(t, (&FetchJobRequest{URL: "example"}).Validate())
}

func TestSetAPIKeyRequest_Validate(t *testing.T) {
	assert.NoError(t, (&SetAPIKeyRequest{APIKey: "abc"}).Validate())
	assert.Error(t, (&SetAPIKeyRequest{}).Validate())
}

func TestHistoryEntry_JSONMarshaling(t *testing.T) {
	entry := HistoryEntry{Score: 60, Source: SourceManual}

	jsonBytes, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"score":60`)
	assert.Contains(t, string(jsonBytes), `"source":"manual"`)
	assert.Contains(t, string(jsonBytes), `"timestamp":`)
}
