// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package aws

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// Settings describes where the snapshot lives in S3. It is read from the
// cache.s3.* config keys.
type Settings struct {
	Bucket   string
	Prefix   string
	Region   string
	Profile  string
	Endpoint string
}

// Enabled reports whether an S3 location is configured at all.
func (s Settings) Enabled() bool {
	return s.Bucket != ""
}

type options struct {
	profile string
	region  string
}

// Option customizes how AWS config is loaded. With no options the shell
// environment and shared config chain (AWS_PROFILE, ~/.aws/config, IMDS)
// decide.
type Option func(*options)

// WithProfile sets the shared config profile.
func WithProfile(profile string) Option {
	return func(o *options) { o.profile = profile }
}

// WithRegion sets the region override.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// LoadAWSConfig loads AWS SDK v2 config.
func LoadAWSConfig(ctx context.Context, opts ...Option) (awsv2.Config, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}

	return config.LoadDefaultConfig(ctx, loadOpts...)
}

// NewS3 constructs a v2 S3 client from the provided config.
func NewS3(cfg awsv2.Config, optFns ...func(*s3v2.Options)) *s3v2.Client {
	return s3v2.NewFromConfig(cfg, optFns...)
}

// WithS3Endpoint points the client at an S3-compatible endpoint (MinIO,
// LocalStack) using path-style addressing.
func WithS3Endpoint(endpoint string) func(*s3v2.Options) {
	return func(o *s3v2.Options) {
		if endpoint == "" {
			return
		}
		o.BaseEndpoint = awsv2.String(endpoint)
		o.UsePathStyle = true
	}
}

// OpenStore loads AWS config for s and returns a Store over its bucket.
func OpenStore(ctx context.Context, s Settings) (*S3Store, error) {
	cfg, err := LoadAWSConfig(ctx, WithProfile(s.Profile), WithRegion(s.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3Store(NewS3(cfg, WithS3Endpoint(s.Endpoint)), s.Bucket, s.Prefix), nil
}
