package reports

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySuccess(t *testing.T) {
	var gotPath, gotFilename string
	var gotBytes []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotBytes, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "result": {"label": "pothole", "confidence": 0.93}}`))
	}))
	defer server.Close()

	classifier := NewHTTPClassifier(server.URL)
	cls, err := classifier.Classify(context.Background(), []byte("jpeg-bytes"), "pothole.jpg", "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "/scan", gotPath)
	assert.Equal(t, "pothole.jpg", gotFilename)
	assert.Equal(t, []byte("jpeg-bytes"), gotBytes)
	assert.Equal(t, "pothole", cls.Label)
	assert.Equal(t, 0.93, cls.Detail["confidence"])
}

func TestClassifyStringEncodedResult(t *testing.T) {
	// The upstream service sometimes double-encodes the result payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "result": "{\"label\": \"streetlight\"}"}`))
	}))
	defer server.Close()

	classifier := NewHTTPClassifier(server.URL)
	cls, err := classifier.Classify(context.Background(), []byte("x"), "a.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "streetlight", cls.Label)
}

func TestClassifyRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": false, "error": "unsupported image"}`))
	}))
	defer server.Close()

	classifier := NewHTTPClassifier(server.URL)
	_, err := classifier.Classify(context.Background(), []byte("x"), "a.png", "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image")
}

func TestClassifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	classifier := NewHTTPClassifier(server.URL)
	_, err := classifier.Classify(context.Background(), []byte("x"), "a.png", "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClassifyMissingLabel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "result": {"confidence": 0.5}}`))
	}))
	defer server.Close()

	classifier := NewHTTPClassifier(server.URL)
	_, err := classifier.Classify(context.Background(), []byte("x"), "a.png", "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no label")
}

func TestClassifyUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	classifier := NewHTTPClassifier(server.URL)
	_, err := classifier.Classify(context.Background(), []byte("x"), "a.png", "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}
