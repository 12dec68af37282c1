package request

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// MaxRequestSize is the size of the single read a request is taken from.
// Anything past it is never looked at.
const MaxRequestSize = 8192

var (
	sepCRLF = []byte("\r\n")
	sepSP   = []byte(" ")
)

type RequestLine struct {
	HttpVersion   string
	RequestTarget string
	Method        string
}

// Request is the parsed form of a request message. Only the request-line is
// interpreted; header fields and body are read but ignored.
type Request struct {
	RequestLine RequestLine
}

var (
	ErrMalformedRequestLine = fmt.Errorf("malformed request-line")
	ErrEmptyRequest         = fmt.Errorf("empty request")
)

// FirstLine returns the bytes before the first CRLF, or all of b when there
// is none.
func FirstLine(b []byte) []byte {
	if idx := bytes.Index(b, sepCRLF); idx != -1 {
		return b[:idx]
	}
	return b
}

func parseRequestLine(b []byte) (*RequestLine, error) {
	parts := bytes.Split(FirstLine(b), sepSP)
	if len(parts) != 3 {
		return nil, ErrMalformedRequestLine
	}
	for _, p := range parts {
		if len(p) == 0 {
			return nil, ErrMalformedRequestLine
		}
	}

	requestLine := &RequestLine{
		Method:        string(parts[0]),
		RequestTarget: string(parts[1]),
		HttpVersion:   string(parts[2]),
	}

	return requestLine, nil
}

// Parse interprets a raw request message. It either returns a Request with
// all request-line fields set or an error and no Request.
func Parse(data []byte) (*Request, error) {
	rl, err := parseRequestLine(data)
	if err != nil {
		return nil, err
	}

	return &Request{RequestLine: *rl}, nil
}

// ReadMessage performs exactly one read of up to MaxRequestSize bytes. It
// returns ErrEmptyRequest when the peer sent nothing before closing.
func ReadMessage(reader io.Reader) ([]byte, error) {
	buf := make([]byte, MaxRequestSize)
	n, err := reader.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, ErrEmptyRequest
	}

	return nil, err
}
