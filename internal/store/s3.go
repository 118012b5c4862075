package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"rescuelink/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3API is the subset of *s3.Client used by the S3 backend.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Backend keeps the document as one JSON object. Writes are conditional on
// the ETag observed at load time.
type S3Backend struct {
	client S3API
	bucket string
	key    string
}

func NewS3Backend(client S3API, bucket, key string) *S3Backend {
	return &S3Backend{client: client, bucket: bucket, key: key}
}

func (b *S3Backend) Name() string {
	return "s3"
}

func (b *S3Backend) Load(ctx context.Context) (*types.Document, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, types.ErrDocumentNotExist
		}
		return nil, fmt.Errorf("get s3://%s/%s: %w", b.bucket, b.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", b.bucket, b.key, err)
	}

	doc := new(types.Document)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse s3://%s/%s: %w", b.bucket, b.key, err)
	}
	doc.ETag = aws.ToString(out.ETag)

	return doc, nil
}

func (b *S3Backend) Save(ctx context.Context, doc *types.Document) error {
	next := *doc
	next.Revision = doc.Revision + 1

	data, err := json.MarshalIndent(&next, "", "    ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}
	if doc.ETag != "" {
		input.IfMatch = aws.String(doc.ETag)
	} else {
		input.IfNoneMatch = aws.String("*")
	}

	out, err := b.client.PutObject(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "PreconditionFailed", "ConditionalRequestConflict":
				return types.ErrRevisionConflict
			}
		}
		return fmt.Errorf("put s3://%s/%s: %w", b.bucket, b.key, err)
	}

	doc.Revision = next.Revision
	doc.ETag = aws.ToString(out.ETag)
	return nil
}
