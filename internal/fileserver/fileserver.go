// Package fileserver maps request targets to files below a web root and
// serves them.
package fileserver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ShazimR/myownwebserver/internal/logfile"
	"github.com/ShazimR/myownwebserver/internal/request"
	"github.com/ShazimR/myownwebserver/internal/response"
)

var (
	ErrNotFound        = fmt.Errorf("resource not found")
	ErrOutsideRoot     = fmt.Errorf("resource outside web root")
	ErrUnsupportedType = fmt.Errorf("unsupported resource type")
)

type Resource struct {
	Path     string
	MimeType string
	Body     []byte
}

type FileServer struct {
	root     string
	realRoot string
	log      *logfile.Logger
	readFile func(name string) ([]byte, error)
}

func New(root string, lg *logfile.Logger) (*FileServer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve web root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve web root: %w", err)
	}

	return &FileServer{
		root:     abs,
		realRoot: resolved,
		log:      lg,
		readFile: os.ReadFile,
	}, nil
}

func (s *FileServer) Root() string {
	return s.root
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Resolve joins target, minus one leading slash, onto the web root. Targets
// that would land outside the root are rejected with ErrOutsideRoot.
func (s *FileServer) Resolve(target string) (string, error) {
	rel := strings.TrimPrefix(target, "/")
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if !within(s.root, full) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, target)
	}

	return full, nil
}

// Load resolves target and reads the file it names.
func (s *FileServer) Load(target string) (*Resource, error) {
	path, err := s.Resolve(target)
	if err != nil {
		return nil, err
	}

	// a path that cannot be stat'ed does not exist as far as clients go
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, err
	}
	if !within(s.realRoot, resolved) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideRoot, target)
	}

	mimeType, ok := MimeType(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}

	body, err := s.readFile(path)
	if err != nil {
		return nil, err
	}

	return &Resource{
		Path:     path,
		MimeType: mimeType,
		Body:     body,
	}, nil
}

func (s *FileServer) Handler(w *response.Writer, req *request.Request) error {
	res, err := s.Load(req.RequestLine.RequestTarget)
	if errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrOutsideRoot) ||
		errors.Is(err, ErrUnsupportedType) {
		return w.WriteError(response.StatusNotFound)
	}
	if err != nil {
		s.log.Error("Error handling request: %v", err)
		return w.WriteError(response.StatusInternalServerError)
	}

	date := w.Now()
	h := response.GetDefaultHeaders(res.MimeType, len(res.Body), date)
	if err := w.WriteResponse(req.RequestLine.HttpVersion, response.StatusOK, h, res.Body); err != nil {
		return err
	}

	contentType, _ := h.Get("Content-Type")
	contentLength, _ := h.Get("Content-Length")
	server, _ := h.Get("Server")
	s.log.Response("content-type=%s, content-length=%s, server=%s, date=%s",
		contentType, contentLength, server, response.FormatDate(date))
	return nil
}
