package jsonld

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// loaderFunc adapts a function to the DocumentLoader interface.
type loaderFunc func(ctx context.Context, iri string) (RemoteDocument, error)

func (f loaderFunc) LoadDocument(ctx context.Context, iri string) (RemoteDocument, error) {
	return f(ctx, iri)
}

func TestStaticDocumentLoader(t *testing.T) {
	loader := NewStaticDocumentLoader()
	require.NoError(t, loader.AddJSON("http://example.org/ctx", `{"@context": {"name": "http://schema.org/name"}}`))

	doc, err := loader.LoadDocument(context.Background(), "http://example.org/ctx")
	require.NoError(t, err)
	require.Equal(t, "http://example.org/ctx", doc.DocumentURL)
	require.Equal(t, jsonLDContentType, doc.ContentType)

	obj, ok := doc.Document.(map[string]interface{})
	require.True(t, ok)
	require.Contains(t, obj, "@context")

	_, err = loader.LoadDocument(context.Background(), "http://example.org/missing")
	require.Equal(t, ErrCodeLoadingDocumentFailed, Code(err))

	require.Error(t, loader.AddJSON("http://example.org/bad", `{"trailing`))
}

func TestHTTPDocumentLoader(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if got := r.Header.Get("Accept"); !strings.Contains(got, "application/ld+json") {
			t.Errorf("Accept = %q, want it to advertise application/ld+json", got)
		}
		w.Header().Set("Content-Type", "application/ld+json")
		w.Header().Set("Cache-Control", "max-age=600")
		w.Write([]byte(`{"@context": {"name": "http://schema.org/name"}}`))
	}))
	defer srv.Close()

	loader := NewHTTPDocumentLoader(srv.Client())
	doc, err := loader.LoadDocument(context.Background(), srv.URL+"/ctx")
	require.NoError(t, err)
	require.Equal(t, jsonLDContentType, doc.ContentType)
	require.Empty(t, doc.ContextURL)

	// A cacheable response must not trigger a second fetch.
	_, err = loader.LoadDocument(context.Background(), srv.URL+"/ctx")
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPDocumentLoaderNoStore(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/ld+json")
		w.Header().Set("Cache-Control", "no-store")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	loader := NewHTTPDocumentLoader(srv.Client())
	for i := 0; i < 2; i++ {
		_, err := loader.LoadDocument(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	require.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestHTTPDocumentLoaderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/html":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html></html>"))
		case "/garbage":
			w.Header().Set("Content-Type", "application/ld+json")
			w.Write([]byte("{not json"))
		}
	}))
	defer srv.Close()

	loader := NewHTTPDocumentLoader(srv.Client())
	for _, path := range []string{"/missing", "/html", "/garbage"} {
		t.Run(path, func(t *testing.T) {
			_, err := loader.LoadDocument(context.Background(), srv.URL+path)
			require.Equal(t, ErrCodeLoadingDocumentFailed, Code(err))
		})
	}
}

func TestHTTPDocumentLoaderLinkHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data.json":
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Link", `</ctx.jsonld>; rel="http://www.w3.org/ns/json-ld#context"`)
			w.Write([]byte(`{"name": "Ann"}`))
		case "/data.jsonld":
			// The context link relation is ignored on ld+json responses.
			w.Header().Set("Content-Type", "application/ld+json")
			w.Header().Set("Link", `</ctx.jsonld>; rel="http://www.w3.org/ns/json-ld#context"`)
			w.Write([]byte(`{"name": "Ann"}`))
		}
	}))
	defer srv.Close()

	loader := NewHTTPDocumentLoader(srv.Client())

	doc, err := loader.LoadDocument(context.Background(), srv.URL+"/data.json")
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/ctx.jsonld", doc.ContextURL)

	doc, err = loader.LoadDocument(context.Background(), srv.URL+"/data.jsonld")
	require.NoError(t, err)
	require.Empty(t, doc.ContextURL)
}

func TestHTTPDocumentLoaderProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", `application/ld+json;profile="http://www.w3.org/ns/json-ld#expanded"`)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	loader := NewHTTPDocumentLoader(srv.Client())
	doc, err := loader.LoadDocument(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "http://www.w3.org/ns/json-ld#expanded", doc.Profile)
}

func TestFindContextLink(t *testing.T) {
	tests := []struct {
		name  string
		links []string
		want  string
	}{
		{
			name:  "quoted rel",
			links: []string{`<http://example.org/ctx>; rel="http://www.w3.org/ns/json-ld#context"`},
			want:  "http://example.org/ctx",
		},
		{
			name:  "bare rel",
			links: []string{`<http://example.org/ctx>; rel=http://www.w3.org/ns/json-ld#context`},
			want:  "http://example.org/ctx",
		},
		{
			name: "multiple links",
			links: []string{
				`<http://example.org/style>; rel="stylesheet", <http://example.org/ctx>; rel="http://www.w3.org/ns/json-ld#context"`,
			},
			want: "http://example.org/ctx",
		},
		{
			name:  "no context relation",
			links: []string{`<http://example.org/next>; rel="next"`},
			want:  "",
		},
		{
			name:  "no parameters",
			links: []string{`<http://example.org/ctx>`},
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findContextLink(tt.links); got != tt.want {
				t.Errorf("findContextLink(%q) = %q, want %q", tt.links, got, tt.want)
			}
		})
	}
}

func TestParseJSONPreservesNumbers(t *testing.T) {
	parsed, err := ParseJSON(strings.NewReader(`{"price": 4.50}`))
	require.NoError(t, err)

	obj := parsed.(map[string]interface{})
	num, ok := obj["price"].(json.Number)
	require.True(t, ok, "numbers must decode as json.Number")
	require.Equal(t, "4.50", num.String())
}
