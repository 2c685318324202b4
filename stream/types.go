// Package stream reads DXF tag streams from files and other io.Readers.
//
// The input is the DXF text format: alternating group code and value lines.
// Gzip and zstd compressed input is detected from its magic bytes and
// decompressed on the fly. Binary DXF is rejected.
//
// Tags are typed by their group code (see dxf.TypeOf) and handed to the dxf
// package unchanged:
//
//	r := stream.NewReader(f)
//	defer r.Close()
//	tags, err := r.ReadAll()
//	sec, err := dxf.ReadEntities(tags, dxf.Options{})
package stream

import (
	"errors"
	"fmt"
)

// Compression identifies the detected input encoding.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

// String returns the compression name.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// MaxLineLength is the default maximum length of a single line (1 MiB).
const MaxLineLength = 1 << 20

// ErrBinaryDXF is returned for binary DXF input.
var ErrBinaryDXF = errors.New("stream: binary DXF is not supported")

// ParseError reports malformed input at a line.
type ParseError struct {
	Reason string
	Line   int // 1-based, 0 if unknown
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("stream: %s at line %d", e.Reason, e.Line)
	}
	return fmt.Sprintf("stream: %s", e.Reason)
}
