package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"image-converter/internal/domain/repositories"
	"image-converter/pkg/constants"
)

const presignTTL = time.Hour

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Storage uploads archives to a bucket and hands out presigned download links.
type S3Storage struct {
	client     s3API
	presigner  s3Presigner
	bucketName string
	prefix     string
}

var _ repositories.ArchiveStorage = (*S3Storage)(nil)

func NewS3Storage(ctx context.Context, bucketName, region, prefix string) (*S3Storage, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Storage{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: bucketName,
		prefix:     prefix,
	}, nil
}

func (s *S3Storage) key(jobID string) string {
	return path.Join(s.prefix, jobID+".zip")
}

func (s *S3Storage) Publish(ctx context.Context, jobID, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	key := s.key(jobID)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucketName),
		Key:                aws.String(key),
		Body:               f,
		ContentLength:      aws.Int64(info.Size()),
		ContentType:        aws.String("application/zip"),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", constants.ArchiveNamePrefix+jobID+".zip")),
		Metadata:           map[string]string{"job-id": jobID},
	})
	if err != nil {
		return "", fmt.Errorf("S3 upload: %w", err)
	}
	return key, nil
}

func (s *S3Storage) Resolve(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *S3Storage) Unpublish(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	return err
}
