package library

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backlogr/internal/sheet"
	"backlogr/pkg/models"
)

func newTestRouter(s *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(s).RegisterRoutes(router.Group("/"))
	return router
}

func TestLibraryEndpoint(t *testing.T) {
	router := newTestRouter(loadedService(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/library?q=hades&sort=price_high", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var res ListResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Hades II", res.Items[0].Title)
	assert.NotEmpty(t, res.RunID)
}

func TestLibraryEndpointRejectsUnknownSort(t *testing.T) {
	router := newTestRouter(loadedService(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/library?sort=rating", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	router := newTestRouter(loadedService(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/library/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats LibraryStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.TotalGames)
}

func TestReloadEndpointErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"source unavailable", sheet.ErrSourceUnavailable, http.StatusBadGateway},
		{"header not found", sheet.ErrHeaderNotFound, http.StatusUnprocessableEntity},
		{"parse failure", sheet.ErrParse, http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewService(func(ctx context.Context) ([]models.Game, error) {
				return nil, tc.err
			})
			router := newTestRouter(s)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/library/reload", nil))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestReloadEndpointSuccess(t *testing.T) {
	s := NewService(fixedLoader(testGames()))
	router := newTestRouter(s)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/library/reload", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		RunID string `json:"run_id"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.RunID)
	assert.Equal(t, 4, body.Count)
}
