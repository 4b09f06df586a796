package gzippedhttp

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler() http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		body, err := io.ReadAll(request.Body)
		if err != nil {
			response.WriteHeader(http.StatusInternalServerError)
			return
		}
		response.WriteHeader(http.StatusOK)
		_, _ = response.Write(body)
	})
}

func gzipBytes(t *testing.T, input []byte) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(input)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func gunzipBytes(t *testing.T, input []byte) []byte {
	zr, err := gzip.NewReader(bytes.NewReader(input))
	require.NoError(t, err)
	output, err := io.ReadAll(zr)
	require.NoError(t, err)

	return output
}

func TestGzipResponse(t *testing.T) {
	handler := GzipResponse(echoHandler())

	t.Run("client accepts gzip", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("hello")))
		request.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
		assert.Contains(t, recorder.Header().Values("Vary"), "Accept-Encoding")
		assert.Equal(t, []byte("hello"), gunzipBytes(t, recorder.Body.Bytes()))
	})

	t.Run("implicit 200 is labeled", func(t *testing.T) {
		page := http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			_, _ = response.Write([]byte("<html>page</html>"))
		})

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		GzipResponse(page).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, []byte("<html>page</html>"), gunzipBytes(t, recorder.Body.Bytes()))
	})

	t.Run("error statuses are labeled too", func(t *testing.T) {
		notFound := http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			response.WriteHeader(http.StatusNotFound)
			_, _ = response.Write([]byte("missing"))
		})

		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		GzipResponse(notFound).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, []byte("missing"), gunzipBytes(t, recorder.Body.Bytes()))
	})

	t.Run("client does not accept gzip", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("hello")))
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, []byte("hello"), recorder.Body.Bytes())
	})
}

func TestUngzipRequest(t *testing.T) {
	handler := UngzipRequest(echoHandler())

	t.Run("gzipped body is decompressed", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(gzipBytes(t, []byte("payload"))))
		request.Header.Set("Content-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, []byte("payload"), recorder.Body.Bytes())
	})

	t.Run("plain body passes through", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("payload")))
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, []byte("payload"), recorder.Body.Bytes())
	})

	t.Run("corrupt gzip body is rejected", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("not gzip")))
		request.Header.Set("Content-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})
}
