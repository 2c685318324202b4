package stream

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic      = []byte{0x1f, 0x8b}
	zstdMagic      = []byte{0x28, 0xb5, 0x2f, 0xfd}
	binarySentinel = []byte("AutoCAD Binary DXF\r\n\x1a\x00")
)

// detect inspects the first bytes of br without consuming them.
func detect(br *bufio.Reader) Compression {
	head, _ := br.Peek(len(zstdMagic))
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip
	default:
		return CompressionNone
	}
}

func isBinaryDXF(br *bufio.Reader) bool {
	head, _ := br.Peek(len(binarySentinel))
	return bytes.Equal(head, binarySentinel)
}

// decompress wraps src in a decoder for c. The returned close function
// releases the decoder.
func decompress(src io.Reader, c Compression) (io.Reader, func() error, error) {
	switch c {
	case CompressionGzip:
		zr, err := gzip.NewReader(src)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, zr.Close, nil
	case CompressionZstd:
		d, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return d, func() error { d.Close(); return nil }, nil
	default:
		return src, func() error { return nil }, nil
	}
}
