package ipchecker

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("empty subnet disables the checker", func(t *testing.T) {
		checker, err := New("")
		require.NoError(t, err)
		assert.False(t, checker.Enabled())
		assert.False(t, checker.Check(net.ParseIP("10.0.0.1")))
	})

	t.Run("invalid CIDR", func(t *testing.T) {
		_, err := New("10.0.0.1")
		assert.Error(t, err)
	})
}

func TestCheck(t *testing.T) {
	checker, err := New("192.168.1.0/24")
	require.NoError(t, err)
	require.True(t, checker.Enabled())

	assert.True(t, checker.Check(net.ParseIP("192.168.1.42")))
	assert.False(t, checker.Check(net.ParseIP("192.168.2.42")))
}

func TestGetClientIP(t *testing.T) {
	checker, err := New("192.168.1.0/24")
	require.NoError(t, err)

	type tTestCase struct {
		name     string
		prepare  func(*http.Request)
		expected string
	}
	testCases := []tTestCase{
		{
			name: "X-Real-IP wins",
			prepare: func(request *http.Request) {
				request.Header.Set("X-Real-IP", "192.168.1.10")
				request.Header.Set("X-Forwarded-For", "10.0.0.1")
			},
			expected: "192.168.1.10",
		},
		{
			name: "first X-Forwarded-For entry",
			prepare: func(request *http.Request) {
				request.Header.Set("X-Forwarded-For", "192.168.1.20, 10.0.0.1")
			},
			expected: "192.168.1.20",
		},
		{
			name:     "falls back to RemoteAddr",
			prepare:  func(request *http.Request) { request.RemoteAddr = "192.168.1.30:54321" },
			expected: "192.168.1.30",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/api/internal/stats", nil)
			testCase.prepare(request)

			clientIP, err := checker.GetClientIP(request)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, clientIP.String())
		})
	}
}
