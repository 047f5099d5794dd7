package sitestore

import "github.com/klauspost/compress/zstd"

// A single encoder and decoder serve every site. Neither starts background
// goroutines at concurrency 1, and both are safe for concurrent EncodeAll
// and DecodeAll calls.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
)

// CompressZStandard appends the compressed form of src to dst.
func CompressZStandard(dst, src []byte) []byte {
	return zstdEncoder.EncodeAll(src, dst)
}

// DecompressZStandard decompresses Zstd compressed data. If you have a buffer
// to use, you can pass it to prevent allocation. If it is too small, or if
// nil is passed, a new buffer will be allocated and returned.
func DecompressZStandard(dst, src []byte) ([]byte, error) {
	return zstdDecoder.DecodeAll(src, dst[:0])
}
