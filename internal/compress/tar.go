package compress

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"strings"
	"time"
)

// ErrNoCSV is returned when an archive holds no CSV file.
var ErrNoCSV = errors.New("csv file not found in archive")

// TarReader reads the first CSV entry of a TAR archive.
type TarReader struct {
	current io.Reader
	eof     bool
}

// NewTarReader buffers the archive from r and positions on its first CSV entry.
func NewTarReader(r io.Reader) (*TarReader, error) {
	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}

	tr := tar.NewReader(bytes.NewReader(buf.Bytes()))
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Typeflag == tar.TypeReg && isCSV(header.Name) {
			return &TarReader{current: tr}, nil
		}
	}

	return nil, ErrNoCSV
}

// Read reads from the CSV entry.
func (t *TarReader) Read(p []byte) (int, error) {
	if t.eof {
		return 0, io.EOF
	}
	n, err := t.current.Read(p)
	if err == io.EOF {
		t.eof = true
	}
	return n, err
}

// Close is a no-op; the archive lives in memory.
func (t *TarReader) Close() error {
	return nil
}

// TarWriter collects writes and emits them as one TAR entry on Close,
// since a tar header needs the entry size up front.
type TarWriter struct {
	w        io.Writer
	fileName string
	buf      bytes.Buffer
}

// NewTarWriter returns a writer that archives into w under fileName.
func NewTarWriter(w io.Writer, fileName string) *TarWriter {
	return &TarWriter{w: w, fileName: fileName}
}

// Write buffers p.
func (t *TarWriter) Write(p []byte) (int, error) {
	return t.buf.Write(p)
}

// Close writes the header, the buffered entry and the archive trailer.
func (t *TarWriter) Close() error {
	tw := tar.NewWriter(t.w)
	header := &tar.Header{
		Name:    t.fileName,
		Mode:    0o644,
		Size:    int64(t.buf.Len()),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	if _, err := tw.Write(t.buf.Bytes()); err != nil {
		return err
	}
	return tw.Close()
}

func isCSV(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".csv")
}
