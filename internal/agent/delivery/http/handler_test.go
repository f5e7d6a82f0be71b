package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/practiceforum/pkg/apperror"
	"github.com/gin-gonic/gin"
)

type fakeRunner struct {
	ran []string
	err error
}

func (f *fakeRunner) RunAgentByName(ctx context.Context, name string) error {
	if name != "CommunityScheduleAgent" {
		return fmt.Errorf("agent %q: %w", name, apperror.ErrNotFound)
	}
	f.ran = append(f.ran, name)
	return f.err
}

func (f *fakeRunner) GetRegisteredAgents() []string {
	return []string{"CommunityScheduleAgent"}
}

func TestAgentRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		method   string
		path     string
		runErr   error
		want     int
		wantRuns int
	}{
		{"list", http.MethodGet, "/agents", nil, http.StatusOK, 0},
		{"run tick", http.MethodPost, "/agents/CommunityScheduleAgent/run", nil, http.StatusOK, 1},
		{"unknown agent", http.MethodPost, "/agents/Missing/run", nil, http.StatusNotFound, 0},
		{"failed tick", http.MethodPost, "/agents/CommunityScheduleAgent/run", errors.New("db down"), http.StatusInternalServerError, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{err: tt.runErr}
			h := NewAgentHandler(runner)

			router := gin.New()
			router.GET("/agents", h.ListAgents)
			router.POST("/agents/:name/run", h.RunAgent)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if len(runner.ran) != tt.wantRuns {
				t.Errorf("runs = %d, want %d", len(runner.ran), tt.wantRuns)
			}
		})
	}
}
