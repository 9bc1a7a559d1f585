package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSendsBrowserHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		fmt.Fprint(w, "<html><body>ok</body></html>")
	}))
	defer srv.Close()

	res := NewHTTPFetcher(Options{}).Fetch(context.Background(), srv.URL)

	require.True(t, res.Success, res.Err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.HTML, "ok")
	assert.Equal(t, UserAgent, got.Get("User-Agent"))
	assert.Equal(t, "en-US,en;q=0.9", got.Get("Accept-Language"))
	assert.Equal(t, "navigate", got.Get("Sec-Fetch-Mode"))
}

func TestFetchNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	res := NewHTTPFetcher(Options{}).Fetch(context.Background(), srv.URL)

	assert.False(t, res.Success)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Contains(t, res.Err, "500")
	assert.Empty(t, res.HTML)
}

func TestFetchTransportErrorIsFailure(t *testing.T) {
	res := NewHTTPFetcher(Options{}).Fetch(context.Background(), "http://127.0.0.1:1/unreachable")

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Err)
	assert.Zero(t, res.StatusCode)
}

func TestFetchMalformedURL(t *testing.T) {
	res := NewHTTPFetcher(Options{}).Fetch(context.Background(), "::not a url")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Err)
}

func TestFetchFollowsBoundedRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/hop/", func(w http.ResponseWriter, r *http.Request) {
		var n int
		fmt.Sscanf(r.URL.Path, "/hop/%d", &n)
		if n == 0 {
			fmt.Fprint(w, "landed")
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/hop/%d", n-1), http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewHTTPFetcher(Options{MaxRedirects: 5})

	ok := f.Fetch(context.Background(), srv.URL+"/hop/5")
	assert.True(t, ok.Success, ok.Err)
	assert.Equal(t, "landed", ok.HTML)

	tooMany := f.Fetch(context.Background(), srv.URL+"/hop/6")
	assert.False(t, tooMany.Success)
	assert.Contains(t, tooMany.Err, "redirects")
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Options{})
	f.client.Timeout = 50 * time.Millisecond

	res := f.Fetch(context.Background(), srv.URL)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Err)
}

func TestFetchAllIsAllSettled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, "page %s", r.URL.Path)
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/a", srv.URL + "/bad", srv.URL + "/b"}
	results := FetchAll(context.Background(), NewHTTPFetcher(Options{}), urls, 2)

	require.Len(t, results, 3)
	assert.Equal(t, int32(3), hits.Load())
	for i, u := range urls {
		assert.Equal(t, u, results[i].URL)
	}
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)
	assert.Len(t, Succeeded(results), 2)
}

type panicFetcher struct{}

func (panicFetcher) Fetch(context.Context, string) Result { panic("boom") }

func TestFetchAllRecoversPanics(t *testing.T) {
	results := FetchAll(context.Background(), panicFetcher{}, []string{"x", "y"}, 0)

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Equal(t, "y", results[1].URL)
}

func TestFetchAllEmpty(t *testing.T) {
	assert.Empty(t, FetchAll(context.Background(), panicFetcher{}, nil, 4))
}
