// Package netx holds small I/O helpers used by the HTTP transports.
package netx

import "io"

// ProgressReader wraps a reader and reports how many bytes have been read
// through it.
type ProgressReader struct {
	r          io.Reader
	total      int64
	read       int64
	OnProgress func(read, total int64)
}

// NewProgressReader reports progress of r against total bytes.
func NewProgressReader(r io.Reader, total int64, onProgress func(read, total int64)) *ProgressReader {
	return &ProgressReader{r: r, total: total, OnProgress: onProgress}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.OnProgress != nil {
			p.OnProgress(p.read, p.total)
		}
	}
	return n, err
}

// BytesRead returns the number of bytes consumed so far.
func (p *ProgressReader) BytesRead() int64 {
	return p.read
}
