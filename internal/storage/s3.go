package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"auction-manager/internal/config"
)

// S3Store uploads images to an S3 compatible bucket
type S3Store struct {
	client         *s3.Client
	bucket         string
	publicEndpoint *url.URL
}

// NewS3Store loads an AWS configuration with static credentials and an
// optional custom endpoint (R2, MinIO).
func NewS3Store(ctx context.Context, cfg config.S3Config, publicBaseURL string) (*S3Store, error) {
	opts := []func(*awsCfg.LoadOptions) error{
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithRegion(cfg.Region),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, awsCfg.WithBaseEndpoint(cfg.Endpoint))
	}
	awsConfig, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.UsePathStyle = cfg.Endpoint != ""
	})
	return NewS3StoreWithClient(client, cfg.Bucket, publicBaseURL)
}

// NewS3StoreWithClient wraps an existing client
func NewS3StoreWithClient(client *s3.Client, bucket, publicBaseURL string) (*S3Store, error) {
	publicEndpoint, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse public base URL: %w", err)
	}
	return &S3Store{client: client, bucket: bucket, publicEndpoint: publicEndpoint}, nil
}

// Save uploads data as key and returns its public URL
func (s *S3Store) Save(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload %s to S3: %w", key, err)
	}
	return s.publicEndpoint.JoinPath(key).String(), nil
}

// Delete removes key from the bucket
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: delete %s from S3: %w", key, err)
	}
	return nil
}
