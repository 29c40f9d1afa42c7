package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	payload := calendar(event("a", "DTSTART:20260120T140000Z", "DTEND:20260120T150000Z"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.ics":
			assert.Equal(t, "text/calendar", r.Header.Get("Accept"))
			_, _ = w.Write(payload)
		case "/big.ics":
			_, _ = w.Write([]byte(strings.Repeat("x", maxBodyBytes+1)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	ctx := context.Background()

	body, err := f.Fetch(ctx, srv.URL+"/ok.ics")
	require.NoError(t, err)
	assert.Equal(t, payload, body)

	_, err = f.Fetch(ctx, srv.URL+"/missing.ics")
	assert.ErrorContains(t, err, "404")

	_, err = f.Fetch(ctx, srv.URL+"/big.ics")
	assert.ErrorContains(t, err, "exceeds")

	_, err = f.Fetch(ctx, "")
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.ics")
	require.NoError(t, os.WriteFile(path, []byte("BEGIN:VCALENDAR"), 0o600))

	body, err := NewFetcher(0).Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR", string(body))

	_, err = NewFetcher(0).Read(context.Background(), filepath.Join(t.TempDir(), "none.ics"))
	assert.Error(t, err)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.com/...(redacted)", redactURL("https://example.com/private.ics?token=abc"))
	assert.Equal(t, "http://host:8080/...(redacted)", redactURL("http://host:8080"))
	assert.Equal(t, "ics://...(redacted)", redactURL("nonsense"))
}
