package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"Foodgram/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var AllowImage = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var (
	ErrNotDataURI      = errors.New("payload is not a base64 data URI")
	ErrContentNotAllow = errors.New("content type not allowed")
)

type (
	AwsS3 interface {
		UploadDataURI(ctx context.Context, folder string, payload string, allowMimetype ...string) (string, error)
		DeleteFile(ctx context.Context, objectKey string) error
		GetPublicLinkKey(objectKey string) string
		GetObjectKeyFromLink(link string) string
	}

	awsS3 struct {
		client *s3.Client
		bucket string
		region string
		base   string
	}
)

func NewAwsS3() AwsS3 {
	region := utils.GetConfig("AWS_S3_REGION")
	bucket := utils.GetConfig("AWS_S3_BUCKET")
	endpoint := utils.GetConfig("AWS_S3_ENDPOINT")

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			utils.GetConfig("AWS_ACCESS_KEY"),
			utils.GetConfig("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to load aws config: %v", err))
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	base := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", bucket, region)
	if endpoint != "" {
		base = fmt.Sprintf("%s/%s/", strings.TrimRight(endpoint, "/"), bucket)
	}

	return &awsS3{
		client: client,
		bucket: bucket,
		region: region,
		base:   base,
	}
}

// DecodeDataURI splits a "data:<mime>;base64,<payload>" string into its bytes
// and the content type sniffed from them.
func DecodeDataURI(payload string, allowMimetype ...string) ([]byte, *mimetype.MIME, error) {
	if !strings.HasPrefix(payload, "data:") {
		return nil, nil, ErrNotDataURI
	}
	header, encoded, found := strings.Cut(payload, ",")
	if !found || !strings.HasSuffix(header, ";base64") {
		return nil, nil, ErrNotDataURI
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, nil, fmt.Errorf("decode data uri: %w", err)
	}

	mtype := mimetype.Detect(data)
	if len(allowMimetype) > 0 && !mimetype.EqualsAny(mtype.String(), allowMimetype...) {
		return nil, nil, fmt.Errorf("%w: %s", ErrContentNotAllow, mtype.String())
	}
	return data, mtype, nil
}

func (a *awsS3) UploadDataURI(ctx context.Context, folder string, payload string, allowMimetype ...string) (string, error) {
	data, mtype, err := DecodeDataURI(payload, allowMimetype...)
	if err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), mtype.Extension())
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mtype.String()),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectKey, err)
	}
	return objectKey, nil
}

func (a *awsS3) DeleteFile(ctx context.Context, objectKey string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey),
	})
	return err
}

func (a *awsS3) GetPublicLinkKey(objectKey string) string {
	return a.base + objectKey
}

// GetObjectKeyFromLink returns "" when link does not point into this bucket.
func (a *awsS3) GetObjectKeyFromLink(link string) string {
	if !strings.HasPrefix(link, a.base) {
		return ""
	}
	return strings.TrimPrefix(link, a.base)
}
