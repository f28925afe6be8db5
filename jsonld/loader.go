package jsonld

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pquerna/cachecontrol"
)

// DocumentLoader resolves remote documents and contexts.
type DocumentLoader interface {
	LoadDocument(ctx context.Context, iri string) (RemoteDocument, error)
}

// RemoteDocument represents a fetched JSON-LD document.
type RemoteDocument struct {
	// DocumentURL is the final URL of the document after redirects.
	DocumentURL string
	// Document is the parsed JSON value.
	Document interface{}
	// ContextURL is the context linked via an HTTP Link header, if any.
	ContextURL string
	// ContentType is the media type the document was served with.
	ContentType string
	// Profile is the JSON-LD profile parameter, if any.
	Profile string
}

// HTTPDocumentLoader fetches remote documents over HTTP with an in-memory
// cache that honors Cache-Control response headers.
type HTTPDocumentLoader struct {
	client *http.Client

	mu    sync.Mutex
	cache map[string]cachedDocument
}

type cachedDocument struct {
	doc     RemoteDocument
	expires time.Time
}

// NewHTTPDocumentLoader creates a loader using the given client, or
// http.DefaultClient when nil.
func NewHTTPDocumentLoader(client *http.Client) *HTTPDocumentLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPDocumentLoader{
		client: client,
		cache:  map[string]cachedDocument{},
	}
}

const jsonLDContentType = "application/ld+json"

// acceptHeader advertises JSON-LD first, then generic JSON.
const acceptHeader = "application/ld+json, application/json;q=0.9, */*;q=0.1"

// LoadDocument fetches iri, reusing a cached copy when the origin's
// Cache-Control headers allow it.
func (l *HTTPDocumentLoader) LoadDocument(ctx context.Context, iri string) (RemoteDocument, error) {
	l.mu.Lock()
	if entry, ok := l.cache[iri]; ok && time.Now().Before(entry.expires) {
		l.mu.Unlock()
		return entry.doc, nil
	}
	l.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iri, nil)
	if err != nil {
		return RemoteDocument{}, wrapError(ErrCodeLoadingDocumentFailed, "building request", iri, err)
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := l.client.Do(req)
	if err != nil {
		return RemoteDocument{}, wrapError(ErrCodeLoadingDocumentFailed, "fetching document", iri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return RemoteDocument{}, newValueError(ErrCodeLoadingDocumentFailed,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), iri)
	}

	doc, err := parseRemoteBody(resp, iri)
	if err != nil {
		return RemoteDocument{}, err
	}

	reasons, expires, ccErr := cachecontrol.CachableResponse(req, resp, cachecontrol.Options{})
	if ccErr == nil && len(reasons) == 0 && expires.After(time.Now()) {
		l.mu.Lock()
		l.cache[iri] = cachedDocument{doc: doc, expires: expires}
		l.mu.Unlock()
	}
	return doc, nil
}

func parseRemoteBody(resp *http.Response, iri string) (RemoteDocument, error) {
	contentType := resp.Header.Get("Content-Type")
	mediaType := contentType
	var profile string
	if mt, params, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = mt
		profile = params["profile"]
	}
	if mediaType != jsonLDContentType && mediaType != "application/json" &&
		!strings.HasSuffix(mediaType, "+json") {
		return RemoteDocument{}, newValueError(ErrCodeLoadingDocumentFailed,
			fmt.Sprintf("unsupported media type %q", mediaType), iri)
	}

	doc := RemoteDocument{
		DocumentURL: resp.Request.URL.String(),
		ContentType: mediaType,
		Profile:     profile,
	}

	// A Link header with the JSON-LD context relation only applies to
	// plain JSON responses.
	if mediaType != jsonLDContentType {
		if alt := findContextLink(resp.Header.Values("Link")); alt != "" {
			doc.ContextURL = resolveIRI(doc.DocumentURL, alt)
		}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var parsed interface{}
	if err := dec.Decode(&parsed); err != nil {
		return RemoteDocument{}, wrapError(ErrCodeLoadingDocumentFailed, "parsing JSON body", iri, err)
	}
	doc.Document = parsed
	return doc, nil
}

const contextLinkRel = "http://www.w3.org/ns/json-ld#context"

// findContextLink extracts the target of a JSON-LD context Link header.
func findContextLink(links []string) string {
	for _, header := range links {
		for _, link := range strings.Split(header, ",") {
			parts := strings.Split(link, ";")
			if len(parts) < 2 {
				continue
			}
			target := strings.TrimSpace(parts[0])
			if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
				continue
			}
			for _, param := range parts[1:] {
				param = strings.TrimSpace(param)
				if param == `rel="`+contextLinkRel+`"` || param == "rel="+contextLinkRel {
					return strings.Trim(target, "<>")
				}
			}
		}
	}
	return ""
}

// StaticDocumentLoader serves documents from a fixed in-memory set, keyed
// by IRI. Useful in tests and for offline processing with pre-fetched
// contexts.
type StaticDocumentLoader struct {
	docs map[string]RemoteDocument
}

// NewStaticDocumentLoader creates an empty static loader.
func NewStaticDocumentLoader() *StaticDocumentLoader {
	return &StaticDocumentLoader{docs: map[string]RemoteDocument{}}
}

// Add registers document under iri. The document must already be a parsed
// JSON value.
func (l *StaticDocumentLoader) Add(iri string, document interface{}) {
	l.docs[iri] = RemoteDocument{DocumentURL: iri, Document: document, ContentType: jsonLDContentType}
}

// AddJSON parses source and registers it under iri.
func (l *StaticDocumentLoader) AddJSON(iri, source string) error {
	var parsed interface{}
	dec := json.NewDecoder(strings.NewReader(source))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return err
	}
	l.Add(iri, parsed)
	return nil
}

// LoadDocument returns the registered document or fails with
// LoadingDocumentFailed.
func (l *StaticDocumentLoader) LoadDocument(_ context.Context, iri string) (RemoteDocument, error) {
	if doc, ok := l.docs[iri]; ok {
		return doc, nil
	}
	return RemoteDocument{}, newValueError(ErrCodeLoadingDocumentFailed, "document not registered", iri)
}

// ParseJSON decodes source into a JSON value tree with number forms
// preserved. It is the decoding the processor applies to its own inputs;
// exposed so callers feed documents through the same path.
func ParseJSON(r io.Reader) (interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var parsed interface{}
	if err := dec.Decode(&parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}
