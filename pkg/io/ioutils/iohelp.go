// Package ioutils holds shared stream helpers for the io readers and
// writers: transparent gzip handling and stdin/stdout via "-".
package ioutils

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
)

// OpenMaybeCompressed opens a file path or stdin ("-") and returns a reader.
// Gzip input is detected by extension or magic bytes and unwrapped.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		br := bufio.NewReader(os.Stdin)
		if b, err := br.Peek(2); err == nil && b[0] == 0x1f && b[1] == 0x8b {
			zr, err := gzip.NewReader(br)
			if err != nil {
				return nil, err
			}
			return zr, nil
		}
		return io.NopCloser(br), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".gz" {
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return readCloser{Reader: zr, closeFn: func() error {
			_ = zr.Close()
			return f.Close()
		}}, nil
	}
	br := bufio.NewReader(f)
	if b, err := br.Peek(2); err == nil && b[0] == 0x1f && b[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return readCloser{Reader: zr, closeFn: func() error {
			_ = zr.Close()
			return f.Close()
		}}, nil
	}
	return readCloser{Reader: br, closeFn: f.Close}, nil
}

// CreateMaybeCompressed creates a file (or writes to stdout if path is "-")
// and returns a writer. Paths ending in .gz are gzip compressed.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		return nopWriteCloser{Writer: bufio.NewWriter(os.Stdout)}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".gz" {
		zw := gzip.NewWriter(f)
		return writeCloser{Writer: zw, closeFn: func() error {
			_ = zw.Close()
			return f.Close()
		}}, nil
	}
	return writeCloser{Writer: bufio.NewWriter(f), closeFn: f.Close}, nil
}

type readCloser struct {
	io.Reader
	closeFn func() error
}

func (r readCloser) Close() error { return r.closeFn() }

type writeCloser struct {
	io.Writer
	closeFn func() error
}

func (w writeCloser) Close() error {
	if bw, ok := w.Writer.(*bufio.Writer); ok {
		_ = bw.Flush()
	}
	return w.closeFn()
}

type nopWriteCloser struct{ io.Writer }

func (n nopWriteCloser) Close() error {
	if bw, ok := n.Writer.(*bufio.Writer); ok {
		return bw.Flush()
	}
	return nil
}
