// Package gzippedhttp transparently compresses HTTP responses and
// decompresses gzip-encoded request bodies.
package gzippedhttp

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

// compressedResponse wraps http.ResponseWriter and gzips the body. The
// Content-Encoding header is set before the first byte goes out, so
// handlers that rely on the implicit 200 are labeled just like the ones
// calling WriteHeader themselves.
type compressedResponse struct {
	http.ResponseWriter
	zw          *gzip.Writer
	wroteHeader bool
}

func newCompressedResponse(response http.ResponseWriter) *compressedResponse {
	zw := gzipWriterPool.Get().(*gzip.Writer)
	zw.Reset(response)

	return &compressedResponse{
		ResponseWriter: response,
		zw:             zw,
	}
}

// WriteHeader sets the Content-Encoding header and the HTTP status code.
func (c *compressedResponse) WriteHeader(statusCode int) {
	if c.wroteHeader {
		return
	}
	c.wroteHeader = true

	c.Header().Set("Content-Encoding", "gzip")
	c.Header().Del("Content-Length")
	c.ResponseWriter.WriteHeader(statusCode)
}

// Write writes gzip-compressed data to the response body.
func (c *compressedResponse) Write(p []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}

	return c.zw.Write(p)
}

func (c *compressedResponse) close() error {
	err := c.zw.Close()
	if err != nil {
		return err
	}
	gzipWriterPool.Put(c.zw)

	return nil
}

// decompressedReader reads a gzip-encoded request body transparently.
type decompressedReader struct {
	body io.ReadCloser
	zr   *gzip.Reader
}

func newDecompressedReader(requestBody io.ReadCloser) (*decompressedReader, error) {
	zr, err := gzip.NewReader(requestBody)
	if err != nil {
		return nil, err
	}

	return &decompressedReader{
		body: requestBody,
		zr:   zr,
	}, nil
}

// Read reads decompressed data from the underlying gzip stream.
func (d *decompressedReader) Read(p []byte) (n int, err error) {
	return d.zr.Read(p)
}

// Close closes both the gzip reader and the underlying body.
func (d *decompressedReader) Close() error {
	if err := d.body.Close(); err != nil {
		return err
	}
	return d.zr.Close()
}

// GzipResponse compresses the response when the client advertises gzip
// support in Accept-Encoding.
func GzipResponse(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		response.Header().Add("Vary", "Accept-Encoding")

		if !strings.Contains(request.Header.Get("Accept-Encoding"), "gzip") {
			h.ServeHTTP(response, request)
			return
		}

		compressed := newCompressedResponse(response)
		defer compressed.close()

		h.ServeHTTP(compressed, request)
	}

	return http.HandlerFunc(middleware)
}

// UngzipRequest replaces a gzip-encoded request body with a decompressed
// reader before passing the request down the chain.
func UngzipRequest(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if strings.Contains(request.Header.Get("Content-Encoding"), "gzip") {
			decompressed, err := newDecompressedReader(request.Body)
			if err != nil {
				response.WriteHeader(http.StatusInternalServerError)
				return
			}
			request.Body = decompressed
			defer decompressed.Close()
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}
