package response

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ShazimR/myownwebserver/internal/headers"
	"github.com/ShazimR/myownwebserver/internal/request"
)

type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusBadRequest          StatusCode = 400
	StatusNotFound            StatusCode = 404
	StatusMethodNotAllowed    StatusCode = 405
	StatusInternalServerError StatusCode = 500
)

const (
	ServerName = "myOwnWebServer"

	// Version used on every status line the server produces itself.
	// Successful responses echo the version token of the request instead.
	DefaultVersion = "HTTP/1.1"
)

var (
	ErrUnrecognizedStatusCode = fmt.Errorf("unrecognized status code")
	ErrFailedToWrite          = fmt.Errorf("failed to write")
)

func (s StatusCode) Reason() (string, bool) {
	switch s {
	case StatusOK:
		return "OK", true
	case StatusBadRequest:
		return "Bad Request", true
	case StatusNotFound:
		return "Not Found", true
	case StatusMethodNotAllowed:
		return "Method Not Allowed", true
	case StatusInternalServerError:
		return "Internal Server Error", true
	default:
		return "", false
	}
}

func (s StatusCode) String() string {
	reason, _ := s.Reason()
	return fmt.Sprintf("%d %s", int(s), reason)
}

type Handler func(w *Writer, req *request.Request) error

type Writer struct {
	writer io.Writer
	now    func() time.Time
	status StatusCode
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{writer: w, now: time.Now}
}

// SetClock replaces the clock used for the Date header.
func (w *Writer) SetClock(now func() time.Time) {
	w.now = now
}

func (w *Writer) Now() time.Time {
	return w.now()
}

// Status reports the status code of the status line written so far, or 0.
func (w *Writer) Status() StatusCode {
	return w.status
}

func (w *Writer) write(p []byte) error {
	writeN := 0
	for writeN < len(p) {
		n, err := w.writer.Write(p[writeN:])
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFailedToWrite, err)
		}
		if n == 0 {
			return fmt.Errorf("%w", ErrFailedToWrite)
		}
		writeN += n
	}

	return nil
}

func (w *Writer) WriteStatusLine(version string, statusCode StatusCode) error {
	reason, ok := statusCode.Reason()
	if !ok {
		return ErrUnrecognizedStatusCode
	}

	statusLine := fmt.Appendf(nil, "%s %d %s\r\n", version, int(statusCode), reason)
	if err := w.write(statusLine); err != nil {
		return err
	}

	w.status = statusCode
	return nil
}

func (w *Writer) WriteHeaders(h *headers.Headers) error {
	b := []byte{}

	h.ForEach(func(name, value string) {
		b = fmt.Appendf(b, "%s: %s\r\n", name, value)
	})
	b = fmt.Appendf(b, "\r\n")

	return w.write(b)
}

func (w *Writer) WriteBody(p []byte) error {
	return w.write(p)
}

func (w *Writer) WriteResponse(version string, statusCode StatusCode, header *headers.Headers, body []byte) error {
	if err := w.WriteStatusLine(version, statusCode); err != nil {
		return err
	}
	if err := w.WriteHeaders(header); err != nil {
		return err
	}
	if err := w.WriteBody(body); err != nil {
		return err
	}

	return nil
}

// WriteError sends the plain-text error response for statusCode. The body is
// the status code followed by its reason phrase.
func (w *Writer) WriteError(statusCode StatusCode) error {
	if _, ok := statusCode.Reason(); !ok {
		return ErrUnrecognizedStatusCode
	}

	body := []byte(statusCode.String())
	h := GetDefaultHeaders("text/plain", len(body), w.now())
	return w.WriteResponse(DefaultVersion, statusCode, h, body)
}

// RFC 1123 with the zone fixed to GMT, as HTTP dates require.
const dateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

func FormatDate(t time.Time) string {
	return t.UTC().Format(dateFormat)
}

func GetDefaultHeaders(contentType string, contentLen int, date time.Time) *headers.Headers {
	h := headers.NewHeaders()
	_ = h.Set("Content-Type", contentType)
	_ = h.Set("Content-Length", strconv.Itoa(contentLen))
	_ = h.Set("Server", ServerName)
	_ = h.Set("Date", FormatDate(date))
	_ = h.Set("Connection", "close")

	return h
}
