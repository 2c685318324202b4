package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Neumenon/dxf/dxf"
)

// Reader reads DXF tags from an io.Reader.
type Reader struct {
	src        io.Reader
	r          *bufio.Reader
	maxLine    int
	decompress bool
	comp       Compression
	closeFn    func() error
	started    bool
	line       int
	err        error // first failure, returned by every later Next
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxLineLength sets the maximum line length (default: 1 MiB).
func WithMaxLineLength(max int) ReaderOption {
	return func(r *Reader) {
		r.maxLine = max
	}
}

// WithoutDecompression reads the input as plain text even if it starts with
// a gzip or zstd header.
func WithoutDecompression() ReaderOption {
	return func(r *Reader) {
		r.decompress = false
	}
}

// NewReader creates a new tag reader.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{
		src:        r,
		maxLine:    MaxLineLength,
		decompress: true,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// start detects the input encoding on first use.
func (r *Reader) start() error {
	r.started = true
	br := bufio.NewReader(r.src)
	if r.decompress {
		r.comp = detect(br)
	}
	src, closeFn, err := decompress(br, r.comp)
	if err != nil {
		return err
	}
	r.closeFn = closeFn
	if r.comp == CompressionNone {
		r.r = br
	} else {
		r.r = bufio.NewReader(src)
	}
	if isBinaryDXF(r.r) {
		return ErrBinaryDXF
	}
	return nil
}

// Compression returns the detected input encoding. It is valid after the
// first call to Next.
func (r *Reader) Compression() Compression {
	return r.comp
}

// Line returns the number of lines consumed so far.
func (r *Reader) Line() int {
	return r.line
}

// readLine reads one line without its terminator.
func (r *Reader) readLine() (string, error) {
	var buf []byte
	for {
		chunk, err := r.r.ReadSlice('\n')
		buf = append(buf, chunk...)
		if lineLength(buf, err == nil) > r.maxLine {
			return "", &ParseError{Reason: fmt.Sprintf("line too long: > %d bytes", r.maxLine), Line: r.line + 1}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF && len(buf) > 0 {
			break
		}
		if err != nil {
			return "", err
		}
		break
	}
	r.line++
	buf = bytes.TrimSuffix(buf, []byte("\n"))
	buf = bytes.TrimSuffix(buf, []byte("\r"))
	return string(buf), nil
}

// lineLength is the length of buf without its line terminator.
func lineLength(buf []byte, terminated bool) int {
	n := len(buf)
	if terminated && n > 0 && buf[n-1] == '\n' {
		n--
	}
	if n > 0 && buf[n-1] == '\r' {
		n--
	}
	return n
}

// Next reads and returns the next tag.
// Returns io.EOF when no more tags are available. After any other error,
// every later call returns the same error.
func (r *Reader) Next() (dxf.Tag, error) {
	if r.err != nil {
		return dxf.NoneTag, r.err
	}
	tag, err := r.next()
	if err != nil && err != io.EOF {
		r.err = err
	}
	return tag, err
}

func (r *Reader) next() (dxf.Tag, error) {
	if !r.started {
		if err := r.start(); err != nil {
			return dxf.NoneTag, err
		}
	}

	codeLine, err := r.readLine()
	if err != nil {
		if err == io.EOF {
			return dxf.NoneTag, io.EOF
		}
		return dxf.NoneTag, fmt.Errorf("read group code: %w", err)
	}
	codeAt := r.line
	if strings.TrimSpace(codeLine) == "" {
		// Trailing blank line before EOF.
		if _, err := r.r.Peek(1); err == io.EOF {
			return dxf.NoneTag, io.EOF
		}
	}
	code, err := strconv.Atoi(strings.TrimSpace(codeLine))
	if err != nil {
		return dxf.NoneTag, &ParseError{Reason: fmt.Sprintf("invalid group code %q", codeLine), Line: codeAt}
	}

	value, err := r.readLine()
	if err != nil {
		if err == io.EOF {
			return dxf.NoneTag, &ParseError{Reason: fmt.Sprintf("missing value for group code %d", code), Line: codeAt}
		}
		return dxf.NoneTag, fmt.Errorf("read value: %w", err)
	}

	tag, err := dxf.ParseTag(code, value)
	if err != nil {
		return dxf.NoneTag, &ParseError{Reason: err.Error(), Line: r.line}
	}
	return tag, nil
}

// ReadAll reads all tags until EOF.
func (r *Reader) ReadAll() (dxf.Tags, error) {
	var tags dxf.Tags
	for {
		tag, err := r.Next()
		if errors.Is(err, io.EOF) {
			return tags, nil
		}
		if err != nil {
			return tags, err
		}
		tags = append(tags, tag)
	}
}

// Close releases the decompressor, if any. It does not close the
// underlying reader.
func (r *Reader) Close() error {
	if r.closeFn == nil {
		return nil
	}
	err := r.closeFn()
	r.closeFn = nil
	return err
}

// ReadFile reads all tags of a DXF file, compressed or not.
func ReadFile(path string, opts ...ReaderOption) (dxf.Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := NewReader(f, opts...)
	defer r.Close()
	tags, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tags, nil
}
