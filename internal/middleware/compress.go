package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// DecompressMiddleware transparently unwraps gzip-encoded request bodies so
// handlers always decode plain JSON.
func DecompressMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.EqualFold(r.Header.Get("Content-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		body, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, "malformed gzip body", http.StatusBadRequest)
			return
		}
		defer body.Close()

		r.Body = body
		r.Header.Del("Content-Encoding")
		next.ServeHTTP(w, r)
	})
}

// CompressMiddleware gzips responses for clients that advertise gzip support.
// Every payload this API writes is JSON or a short error string, so there is
// no content-type gate.
func CompressMiddleware(logger *zap.SugaredLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Add("Vary", "Accept-Encoding")

			zw := gzip.NewWriter(w)
			defer func() {
				if err := zw.Close(); err != nil {
					logger.Errorw("closing gzip response writer", "error", err)
				}
			}()

			next.ServeHTTP(&gzipResponse{ResponseWriter: w, zw: zw}, r)
		})
	}
}

// gzipResponse routes the body through the gzip writer while headers and the
// status code still hit the underlying ResponseWriter directly.
type gzipResponse struct {
	http.ResponseWriter
	zw *gzip.Writer
}

func (g *gzipResponse) Write(p []byte) (int, error) {
	return g.zw.Write(p)
}
