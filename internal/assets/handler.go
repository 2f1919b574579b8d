package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/isometry/traffic-dash/internal/helpers"
	"github.com/isometry/traffic-dash/internal/models"
	"github.com/pkg/errors"
)

type contextBinder interface {
	WithContext(ctx context.Context) fs.FS
}

type fileServer struct {
	src    fs.FS
	logger *slog.Logger
}

// Handler serves the files of src under prefix. Directories and paths with a ".." segment are reported as not found.
func Handler(prefix string, src fs.FS, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = helpers.NewNoopLogger()
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return http.StripPrefix(prefix, &fileServer{src: src, logger: logger})
}

func (s *fileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if containsDotDot(r.URL.Path) {
		s.logger.Warn("rejecting path traversal", slog.String("path", r.URL.Path), slog.String("requestor", r.RemoteAddr))
		http.NotFound(w, r)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "."
	}
	f, err := filesOnly{bind(r.Context(), s.src)}.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to open asset", slog.String("name", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		s.logger.Error("failed to stat asset", slog.String("name", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	content, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			s.logger.Error("failed to read asset", slog.String("name", name), slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		content = bytes.NewReader(data)
	}
	// Unlike http.FileServer, ServeContent does not redirect index.html.
	http.ServeContent(w, r, info.Name(), info.ModTime(), content)
}

// Read loads name from src for runtimes that cannot stream a file, such as Lambda.
// Binary content is base64-encoded.
func Read(ctx context.Context, src fs.FS, name string) (models.Response, error) {
	if containsDotDot(name) {
		return models.Response{}, errors.Wrap(fs.ErrNotExist, name)
	}
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		return models.Response{}, errors.Wrap(fs.ErrNotExist, "empty asset name")
	}
	src = filesOnly{bind(ctx, src)}

	data, err := fs.ReadFile(src, name)
	if err != nil {
		return models.Response{}, err
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	response := models.Response{
		Headers:    map[string]string{"Content-Type": contentType},
		StatusCode: http.StatusOK,
	}
	if isText(contentType) {
		response.Body = string(data)
	} else {
		response.Body = base64.StdEncoding.EncodeToString(data)
		response.Base64 = true
	}
	return response, nil
}

func bind(ctx context.Context, src fs.FS) fs.FS {
	if b, ok := src.(contextBinder); ok {
		return b.WithContext(ctx)
	}
	return src
}

// filesOnly hides directories so that no listing is ever rendered.
type filesOnly struct {
	fs.FS
}

func (f filesOnly) Open(name string) (fs.File, error) {
	file, err := f.FS.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return file, nil
}

func isText(contentType string) bool {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case strings.HasPrefix(mediaType, "text/"):
		return true
	case strings.HasSuffix(mediaType, "json"), strings.HasSuffix(mediaType, "javascript"), strings.HasSuffix(mediaType, "xml"):
		return true
	default:
		return false
	}
}

func containsDotDot(v string) bool {
	if !strings.Contains(v, "..") {
		return false
	}
	for _, ent := range strings.FieldsFunc(v, isSlashRune) {
		if ent == ".." {
			return true
		}
	}
	return false
}

func isSlashRune(r rune) bool { return r == '/' || r == '\\' }
