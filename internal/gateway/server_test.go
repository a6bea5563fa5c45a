package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/postbox/internal/core/message"
	"github.com/hay-kot/postbox/internal/web"
)

// recordingSender implements relay.Sender for testing.
type recordingSender struct {
	mu   sync.Mutex
	sent []message.Record
	err  error
}

func (r *recordingSender) Send(_ context.Context, rec message.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, rec)
	return r.err
}

func (r *recordingSender) records() []message.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]message.Record(nil), r.sent...)
}

func testSite() fstest.MapFS {
	return fstest.MapFS{
		"templates/index.html":   {Data: []byte("<h1>home</h1>")},
		"templates/message.html": {Data: []byte("<form></form>")},
		"templates/error.html":   {Data: []byte("<h1>not found</h1>")},
		"static/style.css":       {Data: []byte("body{}")},
		"static/logo.png":        {Data: []byte("\x89PNG")},
		"static/app.js":          {Data: []byte("console.log(1)")},
		"static/.env":            {Data: []byte("SECRET=1")},
		"static/img/icon.png":    {Data: []byte("\x89PNG")},
	}
}

func newTestServer(t *testing.T, site fstest.MapFS, sender *recordingSender, opts Options) *Server {
	t.Helper()
	opts.Mode = "test"
	return NewServer(site, sender, zerolog.Nop(), opts)
}

func do(s *Server, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

func TestPages(t *testing.T) {
	s := newTestServer(t, testSite(), &recordingSender{}, Options{StaticDeny: []string{"**/.*"}})

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantType   string
		wantBody   string
	}{
		{"root", http.MethodGet, "/", 200, "text/html", "<h1>home</h1>"},
		{"index", http.MethodGet, "/index.html", 200, "text/html", "<h1>home</h1>"},
		{"message page", http.MethodGet, "/message.html", 200, "text/html", "<form></form>"},
		{"css", http.MethodGet, "/static/style.css", 200, "text/css", "body{}"},
		{"png", http.MethodGet, "/static/logo.png", 200, "image/png", "\x89PNG"},
		{"nested png", http.MethodGet, "/static/img/icon.png", 200, "image/png", "\x89PNG"},
		{"other asset", http.MethodGet, "/static/app.js", 200, "application/octet-stream", "console.log(1)"},
		{"missing asset", http.MethodGet, "/static/missing.css", 404, "text/html", "<h1>not found</h1>"},
		{"static dir", http.MethodGet, "/static/img", 404, "text/html", "<h1>not found</h1>"},
		{"static root", http.MethodGet, "/static/", 404, "text/html", "<h1>not found</h1>"},
		{"denied dotfile", http.MethodGet, "/static/.env", 404, "text/html", "<h1>not found</h1>"},
		{"traversal", http.MethodGet, "/static/../templates/index.html", 404, "text/html", "<h1>not found</h1>"},
		{"unknown path", http.MethodGet, "/does-not-exist", 404, "text/html", "<h1>not found</h1>"},
		{"trailing slash", http.MethodGet, "/index.html/", 404, "text/html", "<h1>not found</h1>"},
		{"get submit endpoint", http.MethodGet, "/message", 404, "text/html", "<h1>not found</h1>"},
		{"post page", http.MethodPost, "/index.html", 404, "text/html", "<h1>not found</h1>"},
		{"delete", http.MethodDelete, "/", 404, "text/html", "<h1>not found</h1>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, tt.method, tt.target, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestPages_MissingPages(t *testing.T) {
	site := testSite()
	delete(site, "templates/message.html")
	delete(site, "templates/error.html")
	s := newTestServer(t, site, &recordingSender{}, Options{})

	rec := do(s, http.MethodGet, "/message.html", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")

	rec = do(s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "404 Page not found", rec.Body.String())
}

func TestPages_EmbeddedSite(t *testing.T) {
	s := NewServer(web.Site(""), &recordingSender{}, zerolog.Nop(), Options{Mode: "test"})

	for _, target := range []string{"/", "/message.html", "/static/style.css", "/static/logo.png"} {
		rec := do(s, http.MethodGet, target, "")
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}

	rec := do(s, http.MethodGet, "/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestHandleSubmit(t *testing.T) {
	tests := []struct {
		name string
		body string
		want message.Record
	}{
		{
			name: "both fields",
			body: "username=alice&message=hi",
			want: message.Record{Username: "alice", Message: "hi"},
		},
		{
			name: "encoded text",
			body: "username=Ol%C3%A9&message=hello+world%21",
			want: message.Record{Username: "Olé", Message: "hello world!"},
		},
		{
			name: "empty fields",
			body: "username=&message=",
			want: message.Record{},
		},
		{
			name: "missing fields",
			body: "other=1",
			want: message.Record{},
		},
		{
			name: "repeated field uses first value",
			body: "username=a&username=b&message=m",
			want: message.Record{Username: "a", Message: "m"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &recordingSender{}
			s := newTestServer(t, testSite(), sender, Options{})

			rec := do(s, http.MethodPost, "/message", tt.body)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/", rec.Header().Get("Location"))
			require.Len(t, sender.records(), 1)
			assert.Equal(t, tt.want, sender.records()[0])
		})
	}
}

func TestHandleSubmit_NoBody(t *testing.T) {
	sender := &recordingSender{}
	s := newTestServer(t, testSite(), sender, Options{})

	rec := do(s, http.MethodPost, "/message", "")

	assert.Equal(t, http.StatusFound, rec.Code)
	require.Len(t, sender.records(), 1)
	assert.Equal(t, message.Record{}, sender.records()[0])
}

func TestHandleSubmit_SendFailureIsInvisible(t *testing.T) {
	sender := &recordingSender{err: errors.New("connection refused")}
	s := newTestServer(t, testSite(), sender, Options{})

	rec := do(s, http.MethodPost, "/message", "username=alice&message=hi")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestHandleSubmit_MalformedBodyStillRedirects(t *testing.T) {
	sender := &recordingSender{}
	s := newTestServer(t, testSite(), sender, Options{})

	rec := do(s, http.MethodPost, "/message", "username=alice&message=%zz")

	assert.Equal(t, http.StatusFound, rec.Code)
	require.Len(t, sender.records(), 1)
	assert.Equal(t, "alice", sender.records()[0].Username)
}

func TestHandleSubmit_BodyTooLarge(t *testing.T) {
	sender := &recordingSender{}
	s := newTestServer(t, testSite(), sender, Options{MaxBodyBytes: 32})

	rec := do(s, http.MethodPost, "/message", "username=alice&message="+strings.Repeat("x", 64))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, sender.records())
}

func TestHandleSubmit_AnyContentType(t *testing.T) {
	for _, ct := range []string{"", "text/plain", "application/json"} {
		t.Run(fmt.Sprintf("content type %q", ct), func(t *testing.T) {
			t.Run("body too large", func(t *testing.T) {
				sender := &recordingSender{}
				s := newTestServer(t, testSite(), sender, Options{MaxBodyBytes: 32})

				rec := postWithType(s, ct, strings.Repeat("x", 1<<20))

				assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
				assert.Empty(t, sender.records())
			})

			t.Run("fields parsed", func(t *testing.T) {
				sender := &recordingSender{}
				s := newTestServer(t, testSite(), sender, Options{})

				rec := postWithType(s, ct, "username=alice&message=hi")

				assert.Equal(t, http.StatusFound, rec.Code)
				require.Len(t, sender.records(), 1)
				assert.Equal(t, message.Record{Username: "alice", Message: "hi"}, sender.records()[0])
			})
		})
	}
}

func postWithType(s *Server, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/message", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/css", contentType("a/b.css"))
	assert.Equal(t, "image/png", contentType("logo.png"))
	assert.Equal(t, "application/octet-stream", contentType("logo.PNG"))
	assert.Equal(t, "application/octet-stream", contentType("readme"))
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, testSite(), &recordingSender{}, Options{})

	first := do(s, http.MethodGet, "/", "").Header().Get("X-Request-ID")
	second := do(s, http.MethodGet, "/", "").Header().Get("X-Request-ID")

	assert.Len(t, first, 12)
	assert.NotEqual(t, first, second)
}
