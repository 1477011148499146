package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name       string
		userAgent  string
		deviceType string
		platform   string
		browser    string
	}{
		{
			name:       "Android tablet Chrome",
			userAgent:  "Mozilla/5.0 (Linux; Android 12; SM-T505) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Mobile Safari/537.36",
			deviceType: "tablet",
			platform:   "android",
			browser:    "Chrome",
		},
		{
			name:       "Android phone Chrome",
			userAgent:  "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Mobile Safari/537.36",
			deviceType: "mobile",
			platform:   "android",
			browser:    "Chrome",
		},
		{
			name:       "Windows desktop Firefox",
			userAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/118.0",
			deviceType: "desktop",
			platform:   "windows",
			browser:    "Firefox",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseUserAgent(tt.userAgent)
			assert.Equal(t, tt.deviceType, info.DeviceType)
			assert.Equal(t, tt.platform, info.Platform)
			assert.Equal(t, tt.browser, info.Browser)
			assert.Equal(t, tt.userAgent, info.Raw)
			assert.False(t, info.IsBot)
		})
	}
}

func TestParseUserAgent_Unknown(t *testing.T) {
	for _, ua := range []string{"", "Unknown"} {
		info := ParseUserAgent(ua)
		assert.Equal(t, "unknown", info.DeviceType)
		assert.Equal(t, "Unknown", info.OS)
		assert.Equal(t, "unknown", info.Platform)
	}
}

func newContext(headers map[string]string, remoteAddr string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c.Request = req
	return c
}

func TestGetRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"Public X-Real-IP", map[string]string{"X-Real-IP": "203.0.113.7"}, "10.0.0.1:1234", "203.0.113.7"},
		{"Private X-Real-IP falls through", map[string]string{"X-Real-IP": "10.1.2.3", "X-Forwarded-For": "198.51.100.4"}, "10.0.0.1:1234", "198.51.100.4"},
		{"First public forwarded", map[string]string{"X-Forwarded-For": "192.168.1.5, 198.51.100.4, 10.0.0.2"}, "10.0.0.1:1234", "198.51.100.4"},
		{"All private forwarded", map[string]string{"X-Forwarded-For": "192.168.1.5, 10.0.0.2"}, "10.0.0.1:1234", "192.168.1.5"},
		{"Direct connection", nil, "203.0.113.9:5555", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetRealIP(newContext(tt.headers, tt.remote)))
		})
	}
}

func TestGetUserAgent(t *testing.T) {
	assert.Equal(t, "Unknown", GetUserAgent(newContext(nil, "127.0.0.1:1")))
	assert.Equal(t, "pos/1.0", GetUserAgent(newContext(map[string]string{"User-Agent": "pos/1.0"}, "127.0.0.1:1")))
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret(32)
	require.NoError(t, err)
	b, err := GenerateSecret(32)
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)

	_, err = GenerateSecret(0)
	assert.Error(t, err)
}
