package stream

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strconv"

	"github.com/Neumenon/dxf/dxf"
)

// Digest computes sha256 over the canonical text form of tags: each code
// right-aligned to 3 columns, then the value, each on its own "\n"-terminated
// line. Two tag streams with equal digests carry the same codes and values in
// the same order, regardless of the whitespace, line endings or compression
// of their source files.
func Digest(tags dxf.Tags) [32]byte {
	h := sha256.New()
	canonical(h, tags)
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// EntityDigests computes the Digest of every entity run in the ENTITIES
// section, in file order.
func EntityDigests(tags dxf.Tags) [][32]byte {
	runs := dxf.SplitEntities(dxf.EntitiesSection(tags))
	out := make([][32]byte, len(runs))
	for i, run := range runs {
		out[i] = Digest(run)
	}
	return out
}

func canonical(w io.Writer, tags dxf.Tags) {
	bw := bufio.NewWriter(w)
	for _, t := range tags {
		code := strconv.Itoa(t.Code)
		for i := len(code); i < 3; i++ {
			bw.WriteByte(' ')
		}
		bw.WriteString(code)
		bw.WriteByte('\n')
		bw.WriteString(t.Value.AsString())
		bw.WriteByte('\n')
	}
	bw.Flush()
}

// HashToHex converts a 32-byte hash to lowercase hex string.
func HashToHex(h [32]byte) string {
	return hex.EncodeToString(h[:])
}

// HexToHash parses a 64-character hex string.
func HexToHash(s string) ([32]byte, bool) {
	var h [32]byte
	if len(s) != 64 {
		return h, false
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, false
	}
	return h, true
}
