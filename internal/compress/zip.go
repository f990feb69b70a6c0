package compress

import (
	"archive/zip"
	"bytes"
	"io"
)

// ZipReader reads the first CSV entry of a ZIP archive.
type ZipReader struct {
	current io.ReadCloser
}

// NewZipReader buffers the archive from r and opens its first CSV entry.
func NewZipReader(r io.Reader) (*ZipReader, error) {
	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		return nil, err
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isCSV(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		return &ZipReader{current: rc}, nil
	}

	return nil, ErrNoCSV
}

// Read reads from the CSV entry.
func (z *ZipReader) Read(p []byte) (int, error) {
	return z.current.Read(p)
}

// Close closes the CSV entry.
func (z *ZipReader) Close() error {
	return z.current.Close()
}

// ZipWriter packs everything written to it into a single ZIP entry.
type ZipWriter struct {
	zipWriter *zip.Writer
	file      io.Writer
}

// NewZipWriter starts an archive on w with one entry named fileName.
func NewZipWriter(w io.Writer, fileName string) (*ZipWriter, error) {
	zw := zip.NewWriter(w)
	f, err := zw.Create(fileName)
	if err != nil {
		return nil, err
	}
	return &ZipWriter{
		zipWriter: zw,
		file:      f,
	}, nil
}

// Write writes to the archive entry.
func (z *ZipWriter) Write(p []byte) (int, error) {
	return z.file.Write(p)
}

// Close flushes the central directory.
func (z *ZipWriter) Close() error {
	return z.zipWriter.Close()
}
