package davclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncdownloader/internal/share"
)

// davServer fakes the public WebDAV endpoint of a NextCloud share:
// PROPFIND listings below /public.php/webdav plus ranged GETs.
type davServer struct {
	password string // empty means an open share
	files    map[string][]byte
}

func (s *davServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.password != "" {
		if _, pass, ok := r.BasicAuth(); !ok || pass != s.password {
			w.Header().Set("WWW-Authenticate", `Basic realm="share"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	rel := strings.Trim(strings.TrimPrefix(r.URL.Path, "/public.php/webdav"), "/")
	switch r.Method {
	case http.MethodOptions:
		w.Header().Set("DAV", "1, 2")
		w.Header().Set("Allow", "OPTIONS, GET, HEAD, PROPFIND")
		w.WriteHeader(http.StatusOK)
	case "PROPFIND":
		s.propfind(w, rel)
	case http.MethodGet, http.MethodHead:
		data, ok := s.files[rel]
		if !ok {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, path.Base(rel), time.Unix(1700000000, 0), bytes.NewReader(data))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *davServer) isDir(rel string) bool {
	if rel == "" {
		return true
	}
	for p := range s.files {
		if strings.HasPrefix(p, rel+"/") {
			return true
		}
	}
	return false
}

func (s *davServer) propfind(w http.ResponseWriter, rel string) {
	_, isFile := s.files[rel]
	if !isFile && !s.isDir(rel) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><d:multistatus xmlns:d="DAV:">`)

	href := "/public.php/webdav/" + rel
	if isFile {
		writeResponse(&b, href, path.Base(rel), false, int64(len(s.files[rel])))
	} else {
		writeResponse(&b, href, path.Base("/"+rel), true, 0)
		for _, name := range s.childDirs(rel) {
			writeResponse(&b, href+"/"+name+"/", name, true, 0)
		}
		for _, name := range s.childFiles(rel) {
			writeResponse(&b, href+"/"+name, name, false, int64(len(s.files[strings.TrimPrefix(path.Join(rel, name), "/")])))
		}
	}
	b.WriteString(`</d:multistatus>`)

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusMultiStatus)
	io.WriteString(w, b.String())
}

func (s *davServer) childDirs(rel string) []string {
	return s.childNames(rel, true)
}

func (s *davServer) childFiles(rel string) []string {
	return s.childNames(rel, false)
}

func (s *davServer) childNames(rel string, dirs bool) []string {
	prefix := ""
	if rel != "" {
		prefix = rel + "/"
	}
	seen := map[string]bool{}
	var names []string
	for p := range s.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		name, _, nested := strings.Cut(strings.TrimPrefix(p, prefix), "/")
		if nested != dirs || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeResponse(b *strings.Builder, href, name string, isDir bool, size int64) {
	fmt.Fprintf(b, `<d:response><d:href>%s</d:href><d:propstat><d:prop>`, href)
	fmt.Fprintf(b, `<d:displayname>%s</d:displayname>`, name)
	if isDir {
		b.WriteString(`<d:resourcetype><d:collection/></d:resourcetype>`)
	} else {
		b.WriteString(`<d:resourcetype/>`)
		fmt.Fprintf(b, `<d:getcontentlength>%d</d:getcontentlength>`, size)
		b.WriteString(`<d:getcontenttype>application/octet-stream</d:getcontenttype>`)
	}
	b.WriteString(`<d:getlastmodified>Tue, 14 Nov 2023 22:13:20 GMT</d:getlastmodified>`)
	b.WriteString(`</d:prop><d:status>HTTP/1.1 200 OK</d:status></d:propstat></d:response>`)
}

func shareTree() map[string][]byte {
	return map[string][]byte{
		"example.txt":               []byte("root example"),
		"subdir/example.txt":        []byte("nested example"),
		"subdir/file_1.gz":          []byte("gzip one"),
		"subdir_1.2/subdir/file.gz": []byte("deeply nested"),
	}
}

func newTestClient(t *testing.T, srv *davServer, password string) *Client {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	sh, err := share.Parse(ts.URL + "/s/TESTTOKEN")
	require.NoError(t, err)
	return New(sh, password, 30*time.Second)
}

func TestConnect(t *testing.T) {
	client := newTestClient(t, &davServer{files: shareTree()}, "")
	require.NoError(t, client.Connect())
	assert.Equal(t, "TESTTOKEN", client.Token())
}

func TestConnectWrongPassword(t *testing.T) {
	client := newTestClient(t, &davServer{files: shareTree(), password: "secret"}, "nope")
	err := client.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
}

func TestConnectWithPassword(t *testing.T) {
	client := newTestClient(t, &davServer{files: shareTree(), password: "secret"}, "secret")
	require.NoError(t, client.Connect())
}

func TestList(t *testing.T) {
	client := newTestClient(t, &davServer{files: shareTree()}, "")

	entries, err := client.List("/")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byPath := map[string]bool{}
	for _, e := range entries {
		byPath[e.Path] = e.IsDir
	}
	assert.Equal(t, map[string]bool{
		"example.txt": false,
		"subdir":      true,
		"subdir_1.2":  true,
	}, byPath)
}

func TestListSubdir(t *testing.T) {
	client := newTestClient(t, &davServer{files: shareTree()}, "")

	entries, err := client.List("/subdir")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, e := range entries {
		assert.False(t, e.IsDir)
		assert.True(t, strings.HasPrefix(e.Path, "subdir/"), "path %q not relative to share root", e.Path)
	}
}

func TestWalk(t *testing.T) {
	client := newTestClient(t, &davServer{files: shareTree()}, "")

	files, err := client.Walk("/")
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
		assert.False(t, f.IsDir)
	}
	assert.Equal(t, []string{
		"example.txt",
		"subdir/example.txt",
		"subdir/file_1.gz",
		"subdir_1.2/subdir/file.gz",
	}, paths)

	sizes := map[string]int64{}
	for _, f := range files {
		sizes[f.Path] = f.Size
	}
	assert.Equal(t, int64(len("root example")), sizes["example.txt"])
	assert.Equal(t, int64(len("deeply nested")), sizes["subdir_1.2/subdir/file.gz"])
}

func TestWalkSubPath(t *testing.T) {
	client := newTestClient(t, &davServer{files: shareTree()}, "")

	files, err := client.Walk("/subdir")
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"subdir/example.txt", "subdir/file_1.gz"}, paths)
}

func TestWalkMissingDir(t *testing.T) {
	client := newTestClient(t, &davServer{files: shareTree()}, "")

	_, err := client.Walk("/no/such/dir")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	client := newTestClient(t, &davServer{files: shareTree()}, "")

	rc, err := client.Open("subdir/example.txt")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "nested example", string(data))
}

func TestOpenRange(t *testing.T) {
	client := newTestClient(t, &davServer{files: shareTree()}, "")

	rc, err := client.OpenRange("example.txt", 5)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "example", string(data))
}

func TestOpenMissingFile(t *testing.T) {
	client := newTestClient(t, &davServer{files: shareTree()}, "")

	_, err := client.Open("missing.txt")
	assert.Error(t, err)
}
