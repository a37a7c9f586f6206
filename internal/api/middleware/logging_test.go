package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantryshelf/products-service/internal/testutils"
)

func TestRequestLogger_GeneratesRequestID(t *testing.T) {
	logger, logs := testutils.NewTestLogger()
	mw := NewLoggingMiddlewareWithLogger(logger)

	var seen string
	router := testutils.SetupTestRouter()
	router.Use(mw.RequestLogger(), mw.Logger())
	router.GET("/live", func(c *gin.Context) {
		seen = GetRequestID(c)
		l := GetRequestLogger(c)
		l.Info().Msg("inside handler")
		c.Status(http.StatusOK)
	})

	w := testutils.PerformRequest(router, http.MethodGet, "/live", nil, nil)

	testutils.AssertStatusCode(t, http.StatusOK, w)
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	// Both the handler line and the access line carry the ID.
	assert.Equal(t, 2, logs.Count(`"request_id":"`+seen+`"`))
	assert.Contains(t, logs.String(), `"message":"request completed"`)
}

func TestRequestLogger_KeepsIncomingRequestID(t *testing.T) {
	logger, _ := testutils.NewTestLogger()
	mw := NewLoggingMiddlewareWithLogger(logger)

	router := testutils.SetupTestRouter()
	router.Use(mw.RequestLogger())
	router.GET("/live", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := testutils.PerformRequest(router, http.MethodGet, "/live", nil, map[string]string{
		RequestIDHeader: "req-123",
	})

	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	logger, logs := testutils.NewTestLogger()
	mw := NewLoggingMiddlewareWithLogger(logger)

	router := testutils.SetupTestRouter()
	router.Use(mw.Logger())
	router.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	testutils.PerformRequest(router, http.MethodGet, "/boom", nil, nil)

	assert.Contains(t, logs.String(), `"level":"error"`)
	assert.Contains(t, logs.String(), `"status":500`)
}

func TestGetRequestLogger_Fallbacks(t *testing.T) {
	router := testutils.SetupTestRouter()
	router.GET("/bare", func(c *gin.Context) {
		assert.Empty(t, GetRequestID(c))
		_ = GetRequestLogger(c)
		c.Status(http.StatusNoContent)
	})

	w := testutils.PerformRequest(router, http.MethodGet, "/bare", nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
