package vision

import (
	"ImageRecognitionSkill/internal/annotation"
	"ImageRecognitionSkill/internal/config"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

func TestFromResponse(t *testing.T) {
	resp := &vision.AnnotateImageResponse{
		LogoAnnotations: []*vision.EntityAnnotation{{Description: "Acme", Score: 0.9}},
		LabelAnnotations: []*vision.EntityAnnotation{
			{Description: "Box", Mid: "/m/box", Score: 0.8},
			nil,
			{Description: "Cardboard", Score: 0.7},
		},
		TextAnnotations:    []*vision.EntityAnnotation{},
		FullTextAnnotation: &vision.TextAnnotation{Text: "ACME"},
		ImagePropertiesAnnotation: &vision.ImageProperties{DominantColors: &vision.DominantColorsAnnotation{
			Colors: []*vision.ColorInfo{
				{Color: &vision.Color{Red: 255}, Score: 0.9},
				{Score: 0.1},
			},
		}},
		FaceAnnotations: []*vision.FaceAnnotation{{}},
	}

	result := FromResponse(resp)
	assert.Equal(t, annotation.Entities{{Description: "Acme", Score: 0.9}}, result[annotation.LogoAnnotations])
	assert.Equal(t, annotation.Entities{
		{Description: "Box", Mid: "/m/box", Score: 0.8},
		{Description: "Cardboard", Score: 0.7},
	}, result[annotation.LabelAnnotations])
	assert.NotContains(t, result, annotation.TextAnnotations)
	assert.Equal(t, annotation.FullText{Text: "ACME"}, result[annotation.FullTextAnnotation])
	assert.Equal(t, annotation.ImageProperties{DominantColors: []annotation.ColorInfo{{Red: 255, Score: 0.9}}},
		result[annotation.ImagePropertiesAnnotation])
	assert.Equal(t, annotation.Unsupported{Name: annotation.FaceAnnotations}, result[annotation.FaceAnnotations])

	assert.Equal(t, "imagePropertiesAnnotation: red (0.9)\n\n",
		annotation.RenderFlatText(annotation.Select(result, []string{annotation.ImagePropertiesAnnotation})))
	assert.Empty(t, FromResponse(nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), config.VisionConfig{Endpoint: srv.URL + "/", MaxResults: 5},
		option.WithoutAuthentication())
	require.NoError(t, err)
	return client
}

func TestAnnotate(t *testing.T) {
	image := []byte("fake-png-bytes")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/images:annotate"), r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req vision.BatchAnnotateImagesRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.Len(t, req.Requests, 1)
		assert.Equal(t, base64.StdEncoding.EncodeToString(image), req.Requests[0].Image.Content)
		require.Len(t, req.Requests[0].Features, 2)
		assert.Equal(t, "LABEL_DETECTION", req.Requests[0].Features[0].Type)
		assert.Equal(t, int64(5), req.Requests[0].Features[0].MaxResults)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responses":[{"labelAnnotations":[{"description":"Cat","score":0.97},{"description":"Dog","score":0.6}],"fullTextAnnotation":{"text":"Hello"}}]}`))
	})

	result, err := client.Annotate(context.Background(), image, []string{"label_detection", "DOCUMENT_TEXT_DETECTION"})
	require.NoError(t, err)
	assert.Equal(t, "labelAnnotations: Cat, Dog\n\nfullTextAnnotation: Hello\n\n",
		annotation.RenderFlatText(annotation.Select(result, annotation.FlatTextCategories)))
}

func TestAnnotate_PerImageError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responses":[{"error":{"code":3,"message":"Bad image data."}}]}`))
	})

	_, err := client.Annotate(context.Background(), []byte("x"), []string{"LABEL_DETECTION"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bad image data.")
}

func TestAnnotate_TransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := client.Annotate(context.Background(), []byte("x"), []string{"LABEL_DETECTION"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Quota exceeded")
}

func TestAnnotate_RejectsEmptyInput(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s", r.URL.Path)
	})
	_, err := client.Annotate(context.Background(), nil, []string{"LABEL_DETECTION"})
	assert.Error(t, err)
	_, err = client.Annotate(context.Background(), []byte("x"), nil)
	assert.Error(t, err)
}
