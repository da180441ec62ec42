package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCORS_HeadersOnEveryResponse(t *testing.T) {
	router := gin.New()
	router.Use(CORS("https://frontend.example.com"))
	router.Any("/", func(c *gin.Context) {
		c.JSON(http.StatusTeapot, gin.H{"error": "nope"})
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, "https://frontend.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORS_PreflightNeverReachesHandler(t *testing.T) {
	handlerCalled := false

	router := gin.New()
	router.Use(CORS("*"))
	router.Any("/", func(c *gin.Context) {
		handlerCalled = true
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
	require.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	require.False(t, handlerCalled)
}

func TestRequestID_GeneratedAndPropagated(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		require.NotEmpty(t, c.GetString("request_id"))
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-chosen")
	router.ServeHTTP(rec, req)
	require.Equal(t, "client-chosen", rec.Header().Get("X-Request-ID"))
}
