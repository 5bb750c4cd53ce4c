package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"movecaixa/internal/apierror"
	"movecaixa/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandlerRendersUnhandledError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("pg: connection refused"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Erro interno do servidor", body.Detail)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestErrorHandlerKeepsHandlerResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		// A handler may log via c.Error and still own the response body.
		_ = c.Error(errors.New("pg: connection refused"))
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao acessar o armazenamento"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// The body must be a single JSON object, not two concatenated ones.
	dec := json.NewDecoder(w.Body)
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, dec.Decode(&body))
	assert.Equal(t, "Erro ao acessar o armazenamento", body.Detail)
	assert.False(t, dec.More(), "response body has trailing JSON")
}
