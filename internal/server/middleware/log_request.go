package middleware

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

// maxLoggedBody caps the error response body kept in the log line.
const maxLoggedBody = 2048

type LogRequestConfig struct {
	Logger  Logger
	Skipper Skipper
	// FormFields are multipart/urlencoded values copied into the log line.
	FormFields []string
}

type uploadSummary struct {
	Field       string `json:"field"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// LogRequest writes one line per request. Uploaded files are reduced to
// name, size and type; response bodies are only kept for failed requests.
func LogRequest(config LogRequestConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		panic("Logger is required to use LogRequest")
	}
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			start := time.Now()
			req := c.Request()
			res := c.Response()

			resBuf := &cappedBuffer{limit: maxLoggedBody}
			res.Writer = &bodyDumpWriter{
				Writer:         io.MultiWriter(res.Writer, resBuf),
				ResponseWriter: res.Writer,
			}

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			args := []any{
				"status", res.Status,
				"method", req.Method,
				"path", req.URL.Path,
				"latency_ms", time.Since(start).Milliseconds(),
				"real_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
				"request_id", RequestIDFrom(c),
				"bytes_out", res.Size,
			}
			if req.ContentLength > 0 {
				args = append(args, "bytes_in", req.ContentLength)
			}
			if req.URL.RawQuery != "" {
				args = append(args, "query", req.URL.RawQuery)
			}
			for _, name := range config.FormFields {
				if v := parsedFormValue(req, name); v != "" {
					args = append(args, name, v)
				}
			}
			if uploads := summarizeUploads(req); len(uploads) > 0 {
				args = append(args, "uploads", uploads)
			}

			switch {
			case res.Status >= http.StatusInternalServerError:
				if err != nil {
					args = append(args, "error", err.Error())
				}
				args = append(args, "response_body", errorBody(res, resBuf.Bytes()))
				config.Logger.Errorw("http request", args...)
			case res.Status >= http.StatusBadRequest:
				args = append(args, "response_body", errorBody(res, resBuf.Bytes()))
				config.Logger.Warnw("http request", args...)
			default:
				config.Logger.Infow("http request", args...)
			}
			return err
		}
	}
}

// parsedFormValue reads a body value only when the handler already parsed the form.
func parsedFormValue(req *http.Request, name string) string {
	if req.MultipartForm != nil {
		if vs := req.MultipartForm.Value[name]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}
	if req.PostForm != nil {
		return req.PostForm.Get(name)
	}
	return ""
}

func summarizeUploads(req *http.Request) []uploadSummary {
	if req.MultipartForm == nil {
		return nil
	}
	var out []uploadSummary
	for field, headers := range req.MultipartForm.File {
		for _, fh := range headers {
			out = append(out, uploadSummary{
				Field:       field,
				Filename:    fh.Filename,
				Size:        fh.Size,
				ContentType: fh.Header.Get(echo.HeaderContentType),
			})
		}
	}
	return out
}

func errorBody(res *echo.Response, body []byte) any {
	if strings.HasPrefix(res.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) && json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}

// cappedBuffer keeps the first limit bytes written and drops the rest.
type cappedBuffer struct {
	bytes.Buffer
	limit int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.Len(); room > 0 {
		if len(p) > room {
			b.Buffer.Write(p[:room])
		} else {
			b.Buffer.Write(p)
		}
	}
	return len(p), nil
}

type bodyDumpWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w *bodyDumpWriter) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyDumpWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *bodyDumpWriter) Flush() {
	w.ResponseWriter.(http.Flusher).Flush()
}

func (w *bodyDumpWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.(http.Hijacker).Hijack()
}
