package gemini

import (
	"ImageRecognitionSkill/internal/annotation"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONString(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", "Here you go: {\"a\":1} hope it helps", `{"a":1}`},
		{"control characters", "{\"a\":\x01\"b\"}", `{"a":"b"}`},
		{"keeps newlines", "{\"a\":\n1}", "{\"a\":\n1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSONString(tt.raw))
		})
	}
}

func TestCleanJSONString_FeedsParser(t *testing.T) {
	raw := "```json\n{\"logoAnnotations\":[{\"description\":\"Acme\",\"score\":0.9}],\"labelAnnotations\":[{\"description\":\"Box\"}]}\n```"
	result, err := annotation.ParseResult([]byte(cleanJSONString(raw)))
	require.NoError(t, err)

	value, err := annotation.RenderStructured(annotation.Select(result, annotation.KeywordCategories),
		annotation.SkillsDataKeyword, "Topics", "keywords")
	require.NoError(t, err)
	assert.Contains(t, value["keywords"], `"entries":[{"text":"Acme"},{"text":"Box"}]`)
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := buildPrompt([]string{"label_detection", "IMAGE_PROPERTIES", "FACE_DETECTION"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "labelAnnotations, imagePropertiesAnnotation.")
	assert.NotContains(t, prompt, "faceAnnotations")

	_, err = buildPrompt([]string{"FACE_DETECTION"})
	assert.Error(t, err)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "")
	assert.Error(t, err)
}

func TestAnnotate_RejectsEmptyImage(t *testing.T) {
	c := &Client{}
	_, err := c.Annotate(context.Background(), nil, []string{"LABEL_DETECTION"})
	assert.Error(t, err)
}
