// Package thumbnails downloads course overview images and keeps one file
// per course on local disk.
package thumbnails

import (
	"context"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/mrlokans/courseimport/internal/entities"
	"github.com/mrlokans/courseimport/internal/utils"
)

type Status string

const (
	StatusInvalidExtension Status = "invalid_extension"
	StatusUnchanged        Status = "unchanged"
	StatusDownloaded       Status = "downloaded"
	StatusInvalidImage     Status = "invalid_image"
	StatusError            Status = "error"
)

// DefaultAllowedExtensions are the image types accepted as course overview files.
var DefaultAllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}

const (
	DefaultDialTimeout = 5 * time.Second
	DefaultTimeout     = 10 * time.Second
	DefaultMaxSize     = 10 << 20
)

// Response describes the result of a fetch. File is set for the unchanged
// and downloaded statuses only.
type Response struct {
	Status  Status
	Message string
	File    *entities.Thumbnail
}

// Store persists thumbnail metadata.
type Store interface {
	FindByCourseID(courseID uint) (*entities.Thumbnail, error)
	Save(thumbnail *entities.Thumbnail) error
	Delete(thumbnail *entities.Thumbnail) error
}

type Config struct {
	Dir               string
	AllowedExtensions []string
	DialTimeout       time.Duration
	Timeout           time.Duration
	MaxSize           int64
	// InsecureSkipVerify disables TLS certificate checks for thumbnail hosts.
	InsecureSkipVerify bool
	UserAgent          string
}

// Fetcher downloads thumbnails into a directory.
type Fetcher struct {
	dir        string
	allowed    map[string]bool
	maxSize    int64
	userAgent  string
	store      Store
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// NewFetcher creates the thumbnail directory and an HTTP client bounded by
// the configured timeouts.
func NewFetcher(cfg Config, store Store, logger logrus.FieldLogger) (*Fetcher, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create thumbnails dir: %w", err)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	extensions := cfg.AllowedExtensions
	if len(extensions) == 0 {
		extensions = DefaultAllowedExtensions
	}
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "CourseImport/1.0"
	}

	if cfg.InsecureSkipVerify {
		logger.Warn("TLS verification disabled for thumbnail downloads")
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: dialTimeout}).DialContext,
		TLSHandshakeTimeout: dialTimeout,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}, //nolint:gosec // opt-in
	}

	return &Fetcher{
		dir:       cfg.Dir,
		allowed:   allowed,
		maxSize:   maxSize,
		userAgent: userAgent,
		store:     store,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		logger: logger,
	}, nil
}

// Fetch attaches the image at rawURL to courseID. A course keeps a single
// thumbnail: the same source is not downloaded twice, and a different
// source replaces the stored file. Fetch never returns an error; faults
// are reported through the response status and message.
func (f *Fetcher) Fetch(ctx context.Context, courseID uint, rawURL string) Response {
	log := f.logger.WithFields(logrus.Fields{"course_id": courseID, "url": rawURL})

	ext := extensionOf(rawURL)
	if !f.allowed[ext] {
		return Response{
			Status:  StatusInvalidExtension,
			Message: fmt.Sprintf("Thumbnail is an invalid type. Extension: %s.", ext),
		}
	}

	existing, err := f.store.FindByCourseID(courseID)
	if err != nil {
		return f.failure(log, err)
	}
	if existing != nil {
		if existing.Source == rawURL {
			return Response{
				Status:  StatusUnchanged,
				Message: "Thumbnail is the same source as current thumbnail, not updated.",
				File:    existing,
			}
		}
		if err := f.remove(existing); err != nil {
			return f.failure(log, err)
		}
	}

	tmpPath, size, err := f.download(ctx, rawURL)
	if err != nil {
		return f.failure(log, err)
	}
	defer os.Remove(tmpPath) // no-op once renamed

	mtype, err := mimetype.DetectFile(tmpPath)
	if err != nil {
		return f.failure(log, err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		log.WithField("mime", mtype.String()).Info("Rejected thumbnail content")
		return Response{Status: StatusInvalidImage, Message: "Thumbnail is an invalid type."}
	}

	storedName := thumbnailFilename(courseID, rawURL, ext)
	finalPath := filepath.Join(f.dir, storedName)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return f.failure(log, err)
	}

	thumbnail := &entities.Thumbnail{
		CourseID: courseID,
		Filename: displayFilename(rawURL, ext),
		Path:     finalPath,
		Source:   rawURL,
		MimeType: mtype.String(),
		Size:     size,
	}
	if err := f.store.Save(thumbnail); err != nil {
		_ = os.Remove(finalPath)
		return f.failure(log, err)
	}

	log.WithField("size", size).Info("Thumbnail downloaded")
	return Response{Status: StatusDownloaded, Message: "Thumbnail downloaded and added.", File: thumbnail}
}

// Dir returns the directory thumbnails are stored in.
func (f *Fetcher) Dir() string {
	return f.dir
}

func (f *Fetcher) failure(log logrus.FieldLogger, err error) Response {
	log.WithError(err).Warn("Thumbnail fetch failed")
	return Response{
		Status:  StatusError,
		Message: fmt.Sprintf("Thumbnail could not be retrieved. %s.", strings.TrimSuffix(err.Error(), ".")),
	}
}

func (f *Fetcher) remove(existing *entities.Thumbnail) error {
	if existing.Path != "" {
		if err := os.Remove(existing.Path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove previous thumbnail: %w", err)
		}
	}
	return f.store.Delete(existing)
}

// download writes the response body to a temporary file in the thumbnail
// directory and returns its path and size.
func (f *Fetcher) download(ctx context.Context, rawURL string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp(f.dir, "thumbnail_tmp_")
	if err != nil {
		return "", 0, err
	}
	tmpPath := tmpFile.Name()

	size, err := io.Copy(tmpFile, io.LimitReader(resp.Body, f.maxSize+1))
	closeErr := tmpFile.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && size > f.maxSize {
		err = fmt.Errorf("thumbnail larger than %d bytes", f.maxSize)
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", 0, err
	}

	return tmpPath, size, nil
}

func extensionOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return utils.FileExtension(u.Path)
	}
	return utils.FileExtension(rawURL)
}

func displayFilename(rawURL, ext string) string {
	base := ""
	if u, err := url.Parse(rawURL); err == nil {
		base, _ = url.PathUnescape(path.Base(u.Path))
	}
	return utils.SanitizeFilename(base, "thumbnail"+ext)
}

// thumbnailFilename derives a stable name from the course and source URL.
func thumbnailFilename(courseID uint, rawURL, ext string) string {
	sum := blake2b.Sum256([]byte(fmt.Sprintf("%d:%s", courseID, rawURL)))
	return fmt.Sprintf("course_%d_%s%s", courseID, hex.EncodeToString(sum[:8]), ext)
}
