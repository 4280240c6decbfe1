// Package storage writes and removes objects in the upload bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/gophdrop/internal/s3x"
)

const cacheControl = "max-age=3600"

// ObjectAPI is the part of the S3 client the store uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps uploaded files in one bucket.
type S3Store struct {
	api    ObjectAPI
	bucket string
	prefix string
}

// NewS3Store writes to bucket through api. publicBaseURL is empty for a
// private bucket.
func NewS3Store(api ObjectAPI, bucket, publicBaseURL string) *S3Store {
	return &S3Store{
		api:    api,
		bucket: bucket,
		prefix: s3x.PublicPrefix(publicBaseURL, bucket),
	}
}

func (s *S3Store) Bucket() string { return s.bucket }

// Put stores body under name. size is the exact body length.
func (s *S3Store) Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(name),
		Body:          body,
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String(cacheControl),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}
	return nil
}

// Delete removes name. Removing a missing object is not an error.
func (s *S3Store) Delete(ctx context.Context, name string) error {
	_, err := s.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// PublicURL is the public address of name, "" for a private bucket.
func (s *S3Store) PublicURL(name string) string {
	return s3x.PublicURL(s.prefix, name)
}

// Message turns a store error into the text reported to clients. Backend
// error codes the client knows how to explain are mapped to stable wording.
func Message(err error) string {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return err.Error()
	}
	switch ae.ErrorCode() {
	case "NoSuchBucket":
		return "Bucket not found"
	case "AccessDenied":
		if m := ae.ErrorMessage(); m != "" {
			return "Access denied: " + m
		}
		return "Access denied"
	}
	if m := ae.ErrorMessage(); m != "" {
		return m
	}
	return ae.ErrorCode()
}
