package fileserver

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ShazimR/myownwebserver/internal/logfile"
	"github.com/ShazimR/myownwebserver/internal/request"
	"github.com/ShazimR/myownwebserver/internal/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, time.November, 20, 19, 30, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func mkReq(method, target, version string) *request.Request {
	return &request.Request{
		RequestLine: request.RequestLine{
			Method:        method,
			RequestTarget: target,
			HttpVersion:   version,
		},
	}
}

func writeFile(t *testing.T, root, name string, data []byte) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func newWebRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "index.html", []byte("<h1>Hi</h1>"))
	writeFile(t, root, "notes.TXT", []byte("plain text"))
	writeFile(t, root, "img/cat.jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10})
	writeFile(t, root, "photo.png", []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, os.Mkdir(filepath.Join(root, "docs.html"), 0o755))
	return root
}

func run(t *testing.T, s *FileServer, req *request.Request) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	w := response.NewWriter(&buf)
	w.SetClock(fixedClock)
	err := s.Handler(w, req)
	return buf.String(), err
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{path: "index.html", want: "text/html", ok: true},
		{path: "a/b/page.htm", want: "text/html", ok: true},
		{path: "README.txt", want: "text/plain", ok: true},
		{path: "cat.jpg", want: "image/jpeg", ok: true},
		{path: "cat.JPEG", want: "image/jpeg", ok: true},
		{path: "anim.gif", want: "image/gif", ok: true},
		{path: "photo.png", ok: false},
		{path: "archive.tar.gz", ok: false},
		{path: "Makefile", ok: false},
		{path: "index.html.bak", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := MimeType(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	s, err := New(root, logfile.Discard())
	require.NoError(t, err)

	// Test: One leading slash is stripped
	path, err := s.Resolve("/index.html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "index.html"), path)

	path, err = s.Resolve("index.html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "index.html"), path)

	// Test: A second slash does not make the target absolute
	path, err = s.Resolve("//etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "etc", "passwd"), path)

	// Test: Dot segments that stay inside the root
	path, err = s.Resolve("/a/../index.html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root(), "index.html"), path)

	// Test: Traversal out of the root
	for _, target := range []string{"/../secret.txt", "/a/../../secret.txt", "..", "/.."} {
		_, err = s.Resolve(target)
		assert.ErrorIs(t, err, ErrOutsideRoot, target)
	}
}

func TestLoad(t *testing.T) {
	root := newWebRoot(t)
	s, err := New(root, logfile.Discard())
	require.NoError(t, err)

	res, err := s.Load("/index.html")
	require.NoError(t, err)
	assert.Equal(t, "text/html", res.MimeType)
	assert.Equal(t, []byte("<h1>Hi</h1>"), res.Body)
	assert.Equal(t, filepath.Join(s.Root(), "index.html"), res.Path)

	res, err = s.Load("/img/cat.jpeg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.MimeType)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}, res.Body)

	res, err = s.Load("/notes.TXT")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", res.MimeType)

	_, err = s.Load("/missing.html")
	assert.ErrorIs(t, err, ErrNotFound)

	// Test: Directories are not files
	_, err = s.Load("/")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Load("/docs.html")
	assert.ErrorIs(t, err, ErrNotFound)

	// Test: Path through a regular file
	_, err = s.Load("/index.html/x.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	// Test: Existing file with unknown extension
	_, err = s.Load("/photo.png")
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = s.Load("/../index.html")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestLoadSymlinkEscape(t *testing.T) {
	outside := t.TempDir()
	writeFile(t, outside, "secret.txt", []byte("secret"))

	root := t.TempDir()
	if err := os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	s, err := New(root, logfile.Discard())
	require.NoError(t, err)

	_, err = s.Load("/link.txt")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestNewMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), logfile.Discard())
	require.Error(t, err)
}

func TestHandler(t *testing.T) {
	root := newWebRoot(t)
	var logBuf bytes.Buffer
	s, err := New(root, logfile.New(&logBuf))
	require.NoError(t, err)

	// Test: Served file, version echoed
	out, err := run(t, s, mkReq("GET", "/index.html", "HTTP/1.1"))
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 200 OK\r\n"+
		"Content-Type: text/html\r\n"+
		"Content-Length: 11\r\n"+
		"Server: myOwnWebServer\r\n"+
		"Date: Thu, 20 Nov 2025 19:30:05 GMT\r\n"+
		"Connection: close\r\n"+
		"\r\n"+
		"<h1>Hi</h1>", out)
	assert.Contains(t, logBuf.String(), "[RESPONSE] - content-type=text/html, content-length=11, server=myOwnWebServer, date=Thu, 20 Nov 2025 19:30:05 GMT")

	out, err = run(t, s, mkReq("GET", "/index.html", "HTTP/1.0"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "HTTP/1.0 200 OK\r\n"))

	// Test: Not found cases
	for _, target := range []string{"/missing.html", "/photo.png", "/../etc/passwd", "/"} {
		out, err = run(t, s, mkReq("GET", target, "HTTP/1.1"))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "HTTP/1.1 404 Not Found\r\n"), target)
		assert.True(t, strings.HasSuffix(out, "\r\n\r\n404 Not Found"), target)
	}
}

func TestHandlerInternalError(t *testing.T) {
	root := newWebRoot(t)
	var logBuf bytes.Buffer
	s, err := New(root, logfile.New(&logBuf))
	require.NoError(t, err)
	s.readFile = func(string) ([]byte, error) { return nil, errors.New("disk on fire") }

	out, err := run(t, s, mkReq("GET", "/index.html", "HTTP/1.1"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 500 Internal Server Error\r\n"))
	assert.True(t, strings.HasSuffix(out, "\r\n\r\n500 Internal Server Error"))
	assert.Contains(t, logBuf.String(), "[ERROR] - Error handling request: disk on fire")
}
