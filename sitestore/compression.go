package sitestore

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Compression indicates how (and whether) a site's likelihood block is
// compressed
type Compression uint32

const (
	CompressionDisabled Compression = iota
	CompressionZLIB
	CompressionZStandard
)

func (c Compression) String() string {
	switch c {
	case CompressionDisabled:
		return "none"
	case CompressionZLIB:
		return "zlib"
	case CompressionZStandard:
		return "zstd"

	default:
		return "Illegal selection"
	}
}

// ParseCompression accepts the names produced by String.
func ParseCompression(s string) (Compression, error) {
	for _, c := range []Compression{CompressionDisabled, CompressionZLIB, CompressionZStandard} {
		if c.String() == s {
			return c, nil
		}
	}
	return CompressionDisabled, fmt.Errorf("unknown compression %q", s)
}

func (c Compression) compress(src []byte) ([]byte, error) {
	switch c {
	case CompressionDisabled:
		return src, nil
	case CompressionZLIB:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(src); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZStandard:
		return CompressZStandard(nil, src), nil
	}
	return nil, fmt.Errorf("compression %d is not supported", uint32(c))
}

// decompress may reuse dst as the output buffer.
func (c Compression) decompress(dst, src []byte) ([]byte, error) {
	switch c {
	case CompressionDisabled:
		return src, nil
	case CompressionZLIB:
		r, err := zlib.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		buf := bytes.NewBuffer(dst[:0])
		if _, err := io.Copy(buf, r); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZStandard:
		return DecompressZStandard(dst, src)
	}
	return nil, fmt.Errorf("compression %d is not supported", uint32(c))
}
