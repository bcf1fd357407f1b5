package livepeer

import "io"

// progressReader reports the fraction of total read so far.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	onProgress func(float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.onProgress != nil && p.total > 0 {
			f := float64(p.read) / float64(p.total)
			if f > 1 {
				f = 1
			}
			p.onProgress(f)
		}
	}
	return n, err
}
