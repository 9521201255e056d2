package download

import "io"

type progressReader struct {
	reader io.Reader
	total  int64
	read   int64
	last   int
	onProg ProgressFunc
}

func (pr *progressReader) Read(p []byte) (n int, err error) {
	n, err = pr.reader.Read(p)
	pr.read += int64(n)

	pct := int(pr.read * 100 / pr.total)
	if pct > 100 {
		pct = 100
	}
	if pct > pr.last {
		pr.last = pct
		pr.onProg(pct)
	}
	return n, err
}
