package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestDevicePayloadFallsBackToHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	c.Request.Header.Set("User-Agent", "Mozilla/5.0 (X11)")
	c.Request.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.8")

	attrs := DevicePayload{ScreenWidth: 1920}.attributes(c)
	assert.Equal(t, "Mozilla/5.0 (X11)", attrs.UserAgent)
	assert.Equal(t, "de-DE", attrs.Language)
	assert.Equal(t, 1920, attrs.ScreenWidth)

	attrs = DevicePayload{UserAgent: "custom", Language: "fr"}.attributes(c)
	assert.Equal(t, "custom", attrs.UserAgent)
	assert.Equal(t, "fr", attrs.Language)
}

func TestNewListDataNeverNil(t *testing.T) {
	data := newListData[string](nil)
	assert.NotNil(t, data.Items)
	assert.Zero(t, data.Total)
}
