package web

import (
	"ImageRecognitionSkill/internal/models"
	"ImageRecognitionSkill/internal/services"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubService struct{}

func (stubService) Process(_ context.Context, event models.WebhookEvent) (*services.ProcessResult, error) {
	return &services.ProcessResult{FileID: event.FileID()}, nil
}

func (stubService) Run() error { return nil }

type stubDB struct{}

func (stubDB) GetMetadata(context.Context, string) ([]models.MetadataRecord, error) {
	return []models.MetadataRecord{}, nil
}

func (stubDB) ListJobs(context.Context, int, int) ([]models.SkillJob, error) {
	return nil, nil
}

func TestSetupRouter(t *testing.T) {
	router := SetupRouter(stubDB{}, stubService{})

	tests := []struct {
		method, target, body string
		want                 int
	}{
		{http.MethodPost, "/webhook", `{"source":{"id":"42"}}`, http.StatusOK},
		{http.MethodGet, "/metadata?fileId=42", "", http.StatusOK},
		{http.MethodGet, "/export", "", http.StatusOK},
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body)))
		assert.Equal(t, tt.want, rec.Code, tt.target)
	}
}
