// Package source defines the pull-oriented IQ sample interface the
// pipeline's producer loop drives, plus a file-backed implementation for
// offline replay and testing and an RTP-multicast implementation for a
// networked SDR front end.
package source

import "io"

// LcmPost is rtl_acars_ng.cc's lcm_post table: each post_downsample
// factor with its factors of two removed. Times the 16384-byte base
// block, it makes every read a multiple of the factor, so that
// post-downsample decimation never straddles a block boundary.
var LcmPost = [17]int{1, 1, 1, 3, 1, 5, 3, 7, 1, 9, 5, 11, 3, 13, 7, 15, 1}

// BlockSize returns the IQ byte count read_block should request for a
// given post-downsample factor, per spec.md §6.
func BlockSize(postDownsample int) int {
	if postDownsample < 0 || postDownsample >= len(LcmPost) {
		postDownsample = 0
	}
	return LcmPost[postDownsample] * 16384
}

// Sample is a pull-oriented IQ block source: read_block(out) -> bytes_read,
// matching spec.md §6. Implementations return io.EOF when no further
// blocks are available.
type Sample interface {
	ReadBlock(out []byte) (int, error)
}

// File reads raw offset-127 IQ bytes from an underlying io.Reader — a
// recorded capture file or stdin — one block at a time.
type File struct {
	r io.Reader
}

// NewFile wraps r as a Sample source.
func NewFile(r io.Reader) *File {
	return &File{r: r}
}

func (f *File) ReadBlock(out []byte) (int, error) {
	n, err := io.ReadFull(f.r, out)
	if err == io.ErrUnexpectedEOF {
		return n, io.EOF
	}
	return n, err
}
