// Package media stores uploaded files on local disk under a CDN-style base
// URL and extracts image dimensions and thumbnails.
package media

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/aTrapDeer/utworld/internal/model"
)

// Upload limits.
const (
	DefaultMaxFileSize = 100 << 20
	MaxBatchFiles      = 10
	ThumbnailSize      = 400
)

// ErrTooLarge is returned when an upload exceeds the size limit.
var ErrTooLarge = errors.New("file too large")

var allowedMIMETypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/svg+xml":   true,
	"video/mp4":       true,
	"video/quicktime": true,
	"video/webm":      true,
	"audio/mpeg":      true,
	"audio/wav":       true,
	"audio/ogg":       true,
	"application/pdf": true,
}

// IsAllowed reports whether mimeType may be uploaded.
func IsAllowed(mimeType string) bool {
	return allowedMIMETypes[mimeType]
}

// AllowedTypes lists the uploadable MIME types, sorted.
func AllowedTypes() []string {
	out := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// FileType maps a MIME type to an asset file type.
func FileType(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return model.FileTypeImage
	case strings.HasPrefix(mimeType, "video/"):
		return model.FileTypeVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return model.FileTypeAudio
	case mimeType == "application/pdf":
		return model.FileTypeDocument
	}
	return "other"
}

// Stored describes a saved file.
type Stored struct {
	Filename         string
	OriginalFilename string
	FileType         string
	MimeType         string
	Size             int64
	Key              string
	URL              string
	ThumbnailURL     *string
	Width            *int
	Height           *int
}

// Asset turns the stored file into an asset row.
func (s *Stored) Asset(projectID, altText, caption *string) *model.Asset {
	return &model.Asset{
		ProjectID:        projectID,
		Filename:         s.Filename,
		OriginalFilename: s.OriginalFilename,
		FileType:         s.FileType,
		MimeType:         s.MimeType,
		FileSize:         s.Size,
		StorageKey:       s.Key,
		CloudfrontURL:    s.URL,
		ThumbnailURL:     s.ThumbnailURL,
		Width:            s.Width,
		Height:           s.Height,
		AltText:          altText,
		Caption:          caption,
	}
}

// Storage keeps files under dir and addresses them under baseURL.
type Storage struct {
	dir     string
	baseURL string
	maxSize int64
	now     func() time.Time
}

// NewStorage returns a Storage; maxSize <= 0 means DefaultMaxFileSize.
func NewStorage(dir, baseURL string, maxSize int64) *Storage {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Storage{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// URL returns the public address of key.
func (s *Storage) URL(key string) string {
	return s.baseURL + "/" + key
}

// Handler serves stored files; mount it under the base URL's path.
func (s *Storage) Handler() http.Handler {
	return http.FileServer(http.Dir(s.dir))
}

func (s *Storage) newKey(folder, originalName string) (string, error) {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	name := hex.EncodeToString(b[:])
	if ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), ".")); ext != "" {
		name += "." + ext
	}
	return path.Join(folder, s.now().UTC().Format("2006/01/02"), name), nil
}

// Save writes r to disk. Raster images also get dimensions and, when larger
// than ThumbnailSize, a thumbnail.
func (s *Storage) Save(r io.Reader, originalName, mimeType string) (*Stored, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrTooLarge
	}
	if originalName == "" {
		originalName = "unknown"
	}

	key, err := s.newKey("assets", originalName)
	if err != nil {
		return nil, err
	}
	if err := s.write(key, data); err != nil {
		return nil, err
	}

	out := &Stored{
		Filename:         path.Base(key),
		OriginalFilename: originalName,
		FileType:         FileType(mimeType),
		MimeType:         mimeType,
		Size:             int64(len(data)),
		Key:              key,
		URL:              s.URL(key),
	}
	if out.FileType == model.FileTypeImage && mimeType != "image/svg+xml" {
		s.processImage(out, data)
	}
	return out, nil
}

// processImage fills in dimensions and a thumbnail. Undecodable images are
// kept without either.
func (s *Storage) processImage(out *Stored, data []byte) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out.Width, out.Height = &w, &h
	if max(w, h) <= ThumbnailSize {
		return
	}

	thumb := imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)
	format, ext := imaging.JPEG, ".jpg"
	if hasAlpha(img) {
		format, ext = imaging.PNG, ".png"
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, format, imaging.JPEGQuality(85)); err != nil {
		return
	}
	thumbKey := "thumbnails/" + strings.TrimSuffix(strings.TrimPrefix(out.Key, "assets/"), path.Ext(out.Key)) + ext
	if err := s.write(thumbKey, buf.Bytes()); err != nil {
		return
	}
	url := s.URL(thumbKey)
	out.ThumbnailURL = &url
}

func hasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA, *image.RGBA, *image.NRGBA64, *image.RGBA64, *image.Paletted:
		return true
	}
	return false
}

func (s *Storage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}

func (s *Storage) write(key string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}
	return os.WriteFile(p, data, 0o644)
}

// Delete removes a stored file and its thumbnail, ignoring missing files.
func (s *Storage) Delete(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	base := strings.TrimSuffix(strings.TrimPrefix(key, "assets/"), path.Ext(key))
	for _, ext := range []string{".jpg", ".png"} {
		if tp, err := s.path("thumbnails/" + base + ext); err == nil {
			_ = os.Remove(tp)
		}
	}
	return nil
}
