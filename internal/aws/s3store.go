// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/staranto/wxctlgo/internal/cache"
)

// ObjectAPI is the subset of the S3 client used by S3Store.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3v2.DeleteObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, in *s3v2.HeadObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.HeadObjectOutput, error)
}

// S3Store keeps snapshots as objects under a key prefix.
type S3Store struct {
	api    ObjectAPI
	bucket string
	prefix string
}

var _ cache.Store = (*S3Store)(nil)

// NewS3Store returns a store over bucket/prefix.
func NewS3Store(api ObjectAPI, bucket, prefix string) *S3Store {
	return &S3Store{api: api, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3Store) key(name string) string {
	if s.prefix == "" {
		return path.Base(name)
	}
	return s.prefix + "/" + path.Base(name)
}

// Location implements cache.Store.
func (s *S3Store) Location(name string) string {
	return "s3://" + s.bucket + "/" + s.key(name)
}

// Read implements cache.Store.
func (s *S3Store) Read(ctx context.Context, name string) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(s.bucket),
		Key:    awsv2.String(s.key(name)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Location(name), notExist(err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Location(name), err)
	}
	return data, nil
}

// Write implements cache.Store. A PutObject is atomic, so no temp object is
// needed.
func (s *S3Store) Write(ctx context.Context, name string, data []byte) error {
	_, err := s.api.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:        awsv2.String(s.bucket),
		Key:           awsv2.String(s.key(name)),
		Body:          bytes.NewReader(data),
		ContentLength: awsv2.Int64(int64(len(data))),
		ContentType:   awsv2.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", s.Location(name), err)
	}
	return nil
}

// Remove implements cache.Store.
func (s *S3Store) Remove(ctx context.Context, name string) error {
	_, err := s.api.DeleteObject(ctx, &s3v2.DeleteObjectInput{
		Bucket: awsv2.String(s.bucket),
		Key:    awsv2.String(s.key(name)),
	})
	if err != nil {
		if err = notExist(err); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to remove %s: %w", s.Location(name), err)
	}
	return nil
}

// Stat implements cache.Store.
func (s *S3Store) Stat(ctx context.Context, name string) (cache.Info, error) {
	out, err := s.api.HeadObject(ctx, &s3v2.HeadObjectInput{
		Bucket: awsv2.String(s.bucket),
		Key:    awsv2.String(s.key(name)),
	})
	if err != nil {
		return cache.Info{}, notExist(err)
	}

	info := cache.Info{Name: name, Size: awsv2.ToInt64(out.ContentLength)}
	if out.LastModified != nil {
		info.ModTime = *out.LastModified
	}
	return info, nil
}

// notExist maps the S3 "missing object" errors onto fs.ErrNotExist so callers
// can treat both stores alike.
func notExist(err error) error {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return fmt.Errorf("%w: %w", fs.ErrNotExist, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %w", fs.ErrNotExist, err)
		}
	}
	return err
}
