// Package assets stores uploaded images in an S3-compatible bucket and hands
// out public URLs for them.
//
// Failures are reported as a false result rather than an error: callers
// decide whether a missing upload or a leftover object matters.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/slidedeck/internal/logging"
	sc "github.com/dmitrijs2005/slidedeck/internal/server/config"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// objectAPI is the part of *s3.Client the store uses.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Store struct {
	client       objectAPI
	bucket       string
	publicBase   string
	maxDimension uint
	maxPixels    uint64
	logger       logging.Logger
	now          func() time.Time
}

// NewStore builds a Store on an S3 client configured from cfg. A non-empty
// S3BaseEndpoint selects path-style addressing, as MinIO expects.
func NewStore(ctx context.Context, cfg *sc.Config, logger logging.Logger) (*Store, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return newStore(client, cfg.S3Bucket, PublicBaseURL(cfg), cfg.MaxImageDimension, cfg.MaxImagePixels, logger), nil
}

func newStore(client objectAPI, bucket, publicBase string, maxDimension uint, maxPixels uint64, logger logging.Logger) *Store {
	return &Store{
		client:       client,
		bucket:       bucket,
		publicBase:   strings.TrimRight(publicBase, "/"),
		maxDimension: maxDimension,
		maxPixels:    maxPixels,
		logger:       logger,
		now:          time.Now,
	}
}

// PublicBaseURL is the prefix under which objects of the bucket are
// reachable: the configured S3PublicBaseURL, else endpoint/bucket for a
// custom endpoint, else the AWS virtual-hosted bucket URL.
func PublicBaseURL(cfg *sc.Config) string {
	switch {
	case cfg.S3PublicBaseURL != "":
		return strings.TrimRight(cfg.S3PublicBaseURL, "/")
	case cfg.S3BaseEndpoint != "":
		return strings.TrimRight(cfg.S3BaseEndpoint, "/") + "/" + cfg.S3Bucket
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.S3Bucket)
	}
}

// Upload stores data under a fresh key and returns its public URL. Images
// larger than the configured maximum are downscaled first, unless they
// declare more pixels than allowed, in which case they are kept as sent.
func (s *Store) Upload(ctx context.Context, data []byte, filename, contentType string) (string, bool) {
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	body, resized, err := downscale(data, s.maxDimension, s.maxPixels)
	if err != nil {
		s.logger.Warn(ctx, "image not downscaled", "filename", filename, "error", err)
		body = data
	} else if resized {
		s.logger.Info(ctx, "image downscaled", "filename", filename, "from_bytes", len(data), "to_bytes", len(body))
	}

	key := s.newKey(filename, contentType)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		s.logger.Error(ctx, "asset upload failed", "key", key, "error", err)
		return "", false
	}

	return s.publicBase + "/" + key, true
}

// Delete removes the object behind url. URLs outside this store's public
// base are refused.
func (s *Store) Delete(ctx context.Context, url string) bool {
	key, ok := s.KeyFromURL(url)
	if !ok {
		s.logger.Warn(ctx, "asset url not served by this store", "url", url)
		return false
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error(ctx, "asset delete failed", "key", key, "error", err)
		return false
	}
	return true
}

// KeyFromURL recovers the object key from a URL issued by Upload.
func (s *Store) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.publicBase+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

var imageExtensions = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	if ext, ok := imageExtensions[mediaType]; ok {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}

var safeExtension = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// newKey returns images/YYYY/MM/DD/<uuid><ext>. The extension comes from
// the content type, else the file name, and is dropped unless it is plain
// lowercase alphanumerics.
func (s *Store) newKey(filename, contentType string) string {
	ext := extensionFor(contentType)
	if ext == "" {
		ext = strings.ToLower(path.Ext(filename))
	}
	if !safeExtension.MatchString(ext) {
		ext = ""
	}
	return fmt.Sprintf("images/%s/%s%s", s.now().UTC().Format("2006/01/02"), uuid.NewString(), ext)
}
