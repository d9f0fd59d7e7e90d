package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Uploader stores product images in an S3 bucket. When no bucket is
// configured the uploader is disabled and callers fall back to local storage.
type S3Uploader struct {
	Client *s3.Client
	Bucket string
}

// NewS3Uploader builds an uploader from the ambient AWS configuration
func NewS3Uploader(ctx context.Context) (*S3Uploader, error) {
	bucket := os.Getenv("PRODUCT_IMAGES_BUCKET")
	if bucket == "" {
		return &S3Uploader{Client: nil, Bucket: ""}, nil
	}
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		region = "eu-west-1"
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &S3Uploader{Client: s3.NewFromConfig(cfg), Bucket: bucket}, nil
}

// Enabled reports whether an S3 bucket is configured
func (u *S3Uploader) Enabled() bool { return u != nil && u.Client != nil && u.Bucket != "" }

// UploadImage stores the image bytes under products/<productID>/<filename>
// and returns the object URL.
func (u *S3Uploader) UploadImage(ctx context.Context, productID int, filename, contentType string, data []byte) (string, error) {
	if !u.Enabled() {
		return "", fmt.Errorf("s3 uploader not configured")
	}
	key := path.Join("products", fmt.Sprintf("%d", productID), filename)
	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &u.Bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", u.Bucket, key), nil
}
