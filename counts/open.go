package counts

import (
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"
	"os"

	"github.com/csimplestring/go-csv/detector"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type compression byte

const (
	compressionNone compression = iota
	compressionGzip
	compressionZip
	compressionXZ
	compressionZ
	compressionBZip2
)

// Byte code signatures from https://stackoverflow.com/a/19127748/199475
var magicBytes = map[compression][]byte{
	compressionGzip:  {0x1f, 0x8b, 0x08},
	compressionZip:   {0x50, 0x4b, 0x03, 0x04},
	compressionXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	compressionZ:     {0x1f, 0x9d},
	compressionBZip2: {0x42, 0x5a, 0x68},
}

func sniffCompression(r io.Reader) (compression, error) {
	buff := make([]byte, 6)
	if _, err := io.ReadFull(r, buff); err != nil {
		return compressionNone, err
	}

Outer:
	for c, sig := range magicBytes {
		for i := range sig {
			if buff[i] != sig[i] {
				continue Outer
			}
		}
		return c, nil
	}

	return compressionNone, nil
}

// Open opens a count table or sample sheet on disk, transparently
// decompressing gzip, zip, xz, zlib, or bzip2 content based on the file's
// leading bytes.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	c, err := sniffCompression(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}

	switch c {
	case compressionGzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &closerPair{gz, f}, nil
	case compressionZip:
		return &closerPair{io.NopCloser(zipstream.NewReader(f)), f}, nil
	case compressionBZip2:
		return &closerPair{io.NopCloser(bzip2.NewReader(f)), f}, nil
	case compressionXZ:
		r, err := xz.NewReader(f, 0)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &closerPair{io.NopCloser(r), f}, nil
	case compressionZ:
		z, err := zlib.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &closerPair{z, f}, nil
	}

	return f, nil
}

// closerPair closes the decompressor and then the underlying file.
type closerPair struct {
	io.ReadCloser
	file *os.File
}

func (c *closerPair) Close() error {
	err := c.ReadCloser.Close()
	if ferr := c.file.Close(); err == nil {
		err = ferr
	}

	return err
}

// DetectDelimiter returns the single most likely rune that would delimit the
// values in the reader, assuming a CSV-like file.
func DetectDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')

	if len(delimiters) > 0 {
		return rune(delimiters[0][0])
	}

	return ','
}
