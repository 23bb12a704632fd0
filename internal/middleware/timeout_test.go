package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTimeoutAbortsSlowRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	release := make(chan struct{})
	defer close(release)

	engine := gin.New()
	engine.Use(Timeout(TimeoutConfig{Duration: 20 * time.Millisecond}))
	engine.GET("/slow", func(c *gin.Context) {
		<-release
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestTimeoutPassesFastRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Timeout(TimeoutConfig{Duration: time.Second}))
	engine.GET("/fast", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

// Streaming routes mount on groups without Timeout; their context must
// carry no deadline while sibling groups stay bounded.
func TestTimeoutScopedToGroup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	bounded := engine.Group("", Timeout(TimeoutConfig{Duration: time.Second}))
	bounded.GET("/bounded", func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": hasDeadline})
	})

	engine.GET("/stream", func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": hasDeadline})
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bounded", nil))
	assert.JSONEq(t, `{"deadline":true}`, w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))
	assert.JSONEq(t, `{"deadline":false}`, w.Body.String())
}
