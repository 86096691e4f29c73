package httpx_test

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/login", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestMaxBytes_BoundsFormFieldExtractor(t *testing.T) {
	const limit = 1 << 10

	var (
		key      string
		parseErr error
	)
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = httpx.FormFieldKeyExtractor("username")(r)
		parseErr = r.ParseMultipartForm(limit)
		w.WriteHeader(http.StatusOK)
	}), httpx.MaxBytes(limit))

	t.Run("small multipart body", func(t *testing.T) {
		h.ServeHTTP(httptest.NewRecorder(), multipartRequest(t, map[string]string{"username": "alice"}))
		require.Equal(t, "alice", key)
		require.NoError(t, parseErr)
	})

	t.Run("oversized multipart body", func(t *testing.T) {
		req := multipartRequest(t, map[string]string{
			"username": "alice",
			"padding":  strings.Repeat("x", 4*limit),
		})
		h.ServeHTTP(httptest.NewRecorder(), req)

		require.Empty(t, key)
		require.Error(t, parseErr)
	})
}

func TestMaxBytes_ReportsMaxBytesError(t *testing.T) {
	var readErr error
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = r.Body.Read(make([]byte, 64))
	}), httpx.MaxBytes(8))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	h.ServeHTTP(httptest.NewRecorder(), req)

	var maxErr *http.MaxBytesError
	require.True(t, errors.As(readErr, &maxErr))
	require.EqualValues(t, 8, maxErr.Limit)
}
