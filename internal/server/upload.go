package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	pdfutil "github.com/rgpvpanel/console/internal/pdf"
)

// maxFieldSize bounds a single non-file field of the resource form.
const maxFieldSize = 64 << 10

var errUploadsDisabled = errors.New("file uploads are not configured")

type tempUpload struct {
	f           *os.File
	path        string
	size        int64
	contentType string
	filename    string
}

func (t *tempUpload) cleanup() {
	t.f.Close()
	os.Remove(t.path)
}

// readForm returns the posted fields and, for multipart posts that carry a
// non-empty "file" part, the spooled upload. Plain url-encoded posts are
// accepted too.
func (s *Server) readForm(w http.ResponseWriter, r *http.Request) (url.Values, *tempUpload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return nil, nil, errors.New("invalid form")
		}
		return r.PostForm, nil, nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize+1024*1024)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, nil, errors.New("expecting multipart form")
	}
	values := url.Values{}
	var upload *tempUpload
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if upload != nil {
				upload.cleanup()
			}
			return nil, nil, fmt.Errorf("read multipart: %w", err)
		}
		if part.FormName() == "file" && part.FileName() != "" && upload == nil {
			upload, err = s.persistTemp(part)
			part.Close()
			if err != nil && !errors.Is(err, errEmptyFile) {
				return nil, nil, err
			}
			continue
		}
		data, err := io.ReadAll(io.LimitReader(part, maxFieldSize))
		part.Close()
		if err != nil {
			if upload != nil {
				upload.cleanup()
			}
			return nil, nil, fmt.Errorf("read field %s: %w", part.FormName(), err)
		}
		values.Add(part.FormName(), string(data))
	}
	return values, upload, nil
}

var errEmptyFile = errors.New("empty file")

// persistTemp spools a file part to disk, enforcing the upload limit and
// sniffing the content type from the first bytes.
func (s *Server) persistTemp(part *multipart.Part) (*tempUpload, error) {
	tmpFile, err := os.CreateTemp("", "rgpv-upload-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	fail := func(err error) (*tempUpload, error) {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return nil, err
	}
	var sniff []byte
	buf := make([]byte, 32*1024)
	var written int64
	for {
		n, readErr := part.Read(buf)
		if n > 0 {
			written += int64(n)
			if written > s.cfg.MaxUploadSize {
				return fail(fmt.Errorf("file exceeds limit (%d bytes)", s.cfg.MaxUploadSize))
			}
			if len(sniff) < 512 {
				chunk := n
				if remain := 512 - len(sniff); chunk > remain {
					chunk = remain
				}
				sniff = append(sniff, buf[:chunk]...)
			}
			if _, err := tmpFile.Write(buf[:n]); err != nil {
				return fail(fmt.Errorf("write temp file: %w", err))
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return fail(fmt.Errorf("read file: %w", readErr))
		}
	}
	if written == 0 {
		return fail(errEmptyFile)
	}
	if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
		return fail(fmt.Errorf("rewind temp file: %w", err))
	}
	return &tempUpload{
		f:           tmpFile,
		path:        tmpFile.Name(),
		size:        written,
		contentType: http.DetectContentType(sniff),
		filename:    filepath.Base(part.FileName()),
	}, nil
}

// storeUpload checks that the spooled file is a readable PDF and hands it to
// object storage. It returns the stored file's URL and what was learned
// while inspecting it.
func (s *Server) storeUpload(ctx context.Context, upload *tempUpload) (string, pdfutil.Info, error) {
	if s.uploader == nil {
		return "", pdfutil.Info{}, errUploadsDisabled
	}
	if upload.contentType != "application/pdf" {
		return "", pdfutil.Info{}, errors.New("only PDF files supported")
	}
	info, err := pdfutil.InspectReader(upload.f)
	if err != nil {
		return "", info, fmt.Errorf("unreadable pdf: %w", err)
	}
	if _, err := upload.f.Seek(0, io.SeekStart); err != nil {
		return "", info, err
	}
	fileURL, err := s.uploader.UploadPDF(ctx, upload.filename, upload.f, upload.size)
	if err != nil {
		return "", info, err
	}
	s.log.Info("pdf uploaded",
		zap.String("file", upload.filename),
		zap.Int64("bytes", upload.size),
		zap.Int("pages", info.Pages))
	return fileURL, info, nil
}
