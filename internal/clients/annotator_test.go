package clients

import (
	"ImageRecognitionSkill/internal/clients/vision"
	"ImageRecognitionSkill/internal/config"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnnotator(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{Annotator: config.AnnotatorConfig{Backend: config.BackendVision}, Vision: config.VisionConfig{APIKey: "test-key"}}
	a, closeFn, err := NewAnnotator(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &vision.Client{}, a)
	assert.NoError(t, closeFn())

	cfg = &config.Config{Annotator: config.AnnotatorConfig{Backend: config.BackendGemini}}
	_, _, err = NewAnnotator(ctx, cfg)
	assert.Error(t, err)

	cfg = &config.Config{Annotator: config.AnnotatorConfig{Backend: "rekognition"}}
	_, closeFn, err = NewAnnotator(ctx, cfg)
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}
