package middleware

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/drstein77/shopbot/internal/compress"
)

const (
	ArchiveZip = "zip"
	ArchiveTar = "tar"
)

type archiveKey struct{}

// ArchiveTypeMiddleware packs the response body into a single-entry archive
// named entryName when the request asks for ?archiveType=zip|tar and the
// client accepts that encoding. Other requests pass through untouched.
func ArchiveTypeMiddleware(entryName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			archiveType := r.URL.Query().Get("archiveType")
			if archiveType != ArchiveZip && archiveType != ArchiveTar {
				next.ServeHTTP(w, r)
				return
			}

			CreateCompressMiddleware(archiveType, entryName)(next).ServeHTTP(w, r)
		})
	}
}

// CreateCompressMiddleware archives the response with the given type.
func CreateCompressMiddleware(archiveType, entryName string) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), archiveType) {
				h.ServeHTTP(w, r)
				return
			}

			// Headers go out before the archive writes its first bytes.
			var cw io.WriteCloser
			switch archiveType {
			case ArchiveZip:
				w.Header().Set("Content-Encoding", archiveType)
				w.Header().Set("Content-Type", "application/zip")
				zw, err := compress.NewZipWriter(w, entryName)
				if err != nil {
					http.Error(w, "failed to start archive", http.StatusInternalServerError)
					return
				}
				cw = zw
			case ArchiveTar:
				w.Header().Set("Content-Encoding", archiveType)
				w.Header().Set("Content-Type", "application/x-tar")
				cw = compress.NewTarWriter(w, entryName)
			default:
				h.ServeHTTP(w, r)
				return
			}
			defer cw.Close()

			ctx := context.WithValue(r.Context(), archiveKey{}, archiveType)
			h.ServeHTTP(&archiveWriter{ResponseWriter: w, archive: cw}, r.WithContext(ctx))
		})
	}
}

// Archived reports whether the response to r is being archived, so the
// handler can pick a file-friendly body format.
func Archived(r *http.Request) bool {
	_, ok := r.Context().Value(archiveKey{}).(string)
	return ok
}

type archiveWriter struct {
	http.ResponseWriter
	archive io.Writer
}

func (a *archiveWriter) Write(p []byte) (int, error) {
	return a.archive.Write(p)
}
