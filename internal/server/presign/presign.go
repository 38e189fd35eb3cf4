// Package presign signs short-lived object-storage URLs for the client and
// answers "does this object already exist". Content addressing puts the hash
// in the key, so an existence hit means the exact bytes are already stored
// and the client can skip the transfer.
package presign

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	sc "github.com/dkovalev/lotkeeper/internal/server/config"
)

// Seams over the AWS SDK so tests can stub the network edge.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}
)

// Service signs upload/download URLs against one bucket.
type Service struct {
	config *sc.Config
}

func NewService(c *sc.Config) *Service {
	return &Service{config: c}
}

// KeyInUserScope reports whether an object key lies inside the user's
// prefix. Every signed URL must pass this check first; the token's user id
// is the only trusted scope.
func KeyInUserScope(key, userID string) bool {
	return userID != "" && strings.HasPrefix(key, "u/"+userID+"/")
}

func (s *Service) getClient() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3AccessKey,
			s.config.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	}), nil
}

// Exists reports whether the object is already stored, returning its ETag
// when it is.
func (s *Service) Exists(ctx context.Context, key string) (bool, string, error) {
	client, err := s.getClient()
	if err != nil {
		return false, "", err
	}

	out, err := headObject(client, ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey") {
			return false, "", nil
		}
		return false, "", fmt.Errorf("failed to head object: %w", err)
	}
	return true, aws.ToString(out.ETag), nil
}

// SignPut returns a presigned upload URL bound to the key and content type.
func (s *Service) SignPut(ctx context.Context, key, contentType string) (string, error) {
	client, err := s.getClient()
	if err != nil {
		return "", err
	}

	req, err := presignPutObject(newS3PresignClient(client), ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.config.UploadURLExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign put: %w", err)
	}
	return req.URL, nil
}

// SignGet returns a presigned download URL. A zero expiry falls back to the
// configured default.
func (s *Service) SignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = s.config.DownloadURLExpiry
	}

	client, err := s.getClient()
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign get: %w", err)
	}
	return req.URL, nil
}
