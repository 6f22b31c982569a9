package images

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// S3Store uploads into a bucket, optionally under a key prefix. Public ids
// are object keys.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
	region string
}

// OpenS3FromEnv builds an S3Store from the environment.
//
//	IMAGE_S3_BUCKET (required)
//	IMAGE_S3_PREFIX (optional key prefix)
//	AWS_REGION and the usual AWS credential variables
func OpenS3FromEnv(ctx context.Context) (*S3Store, error) {
	bucket := os.Getenv("IMAGE_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("IMAGE_S3_BUCKET not set")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return &S3Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: os.Getenv("IMAGE_S3_PREFIX"),
		region: cfg.Region,
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, fileRef, targetID string) (Image, error) {
	data, err := os.ReadFile(fileRef)
	if err != nil {
		return Image{}, errors.Wrap(err, "read image source")
	}
	key := path.Join(s.prefix, targetID, uuid.NewString()+filepath.Ext(fileRef))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return Image{}, errors.Wrap(err, "s3 put")
	}
	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	return Image{URL: url, PublicID: key}, nil
}

func (s *S3Store) Delete(ctx context.Context, publicID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	return errors.Wrap(err, "s3 delete")
}

func (s *S3Store) DeleteMany(ctx context.Context, publicIDs []string) error {
	for _, id := range publicIDs {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *S3Store) Driver() Driver { return DriverS3 }
