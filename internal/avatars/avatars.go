// Package avatars hands out presigned S3 upload URLs for profile images.
package avatars

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/hugh/secretstuffs/pkg/config"
)

var (
	ErrDisabled               = errors.New("avatar uploads are not configured")
	ErrUnsupportedContentType = errors.New("unsupported image content type")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Presigner is the subset of s3.PresignClient used here.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Upload struct {
	UploadURL   string            `json:"upload_url"`
	Method      string            `json:"method"`
	Headers     map[string]string `json:"headers,omitempty"`
	ObjectKey   string            `json:"object_key"`
	PublicURL   string            `json:"public_url"`
	ExpiresAt   time.Time         `json:"expires_at"`
	ContentType string            `json:"content_type"`
}

type Service struct {
	presigner  Presigner
	bucket     string
	publicBase string
	ttl        time.Duration
	now        func() time.Time
	log        *slog.Logger
}

// New builds an S3 presign client from cfg. A custom endpoint switches to
// path-style addressing for S3-compatible stores.
func New(ctx context.Context, cfg *config.AvatarConfig, log *slog.Logger) (*Service, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return NewWithPresigner(s3.NewPresignClient(client), cfg.Bucket, publicBase, cfg.TTL(), log), nil
}

func NewWithPresigner(p Presigner, bucket, publicBase string, ttl time.Duration, log *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Service{
		presigner:  p,
		bucket:     bucket,
		publicBase: publicBase,
		ttl:        ttl,
		now:        time.Now,
		log:        log,
	}
}

// PresignUpload returns a URL the client can PUT the image to directly.
func (s *Service) PresignUpload(ctx context.Context, userID uint, contentType string) (*Upload, error) {
	ext, ok := extensions[contentType]
	if !ok {
		return nil, ErrUnsupportedContentType
	}

	key := fmt.Sprintf("avatars/%d/%s%s", userID, uuid.NewString(), ext)

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("presigning upload: %w", err)
	}

	headers := make(map[string]string, len(req.SignedHeader))
	for k, v := range req.SignedHeader {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	s.log.Debug("presigned avatar upload", "user_id", userID, "key", key)

	return &Upload{
		UploadURL:   req.URL,
		Method:      req.Method,
		Headers:     headers,
		ObjectKey:   key,
		PublicURL:   s.publicBase + "/" + key,
		ExpiresAt:   s.now().Add(s.ttl),
		ContentType: contentType,
	}, nil
}
