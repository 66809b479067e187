// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 fetches a document from an S3 object. Credentials and region come from
// the standard AWS chain (AWS_PROFILE, shared config, env, IMDS).
type S3 struct {
	Bucket string
	Key    string
}

// NewS3 parses an s3://bucket/key spec.
func NewS3(spec string) (*S3, error) {
	trimmed := strings.TrimPrefix(spec, "s3://")
	bucket, key, found := strings.Cut(trimmed, "/")
	if !found || bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 spec %q, want s3://bucket/key", spec)
	}
	return &S3{Bucket: bucket, Key: key}, nil
}

func (s *S3) Fetch(ctx context.Context) ([]byte, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	svc := s3.NewFromConfig(cfg)
	result, err := svc.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get S3 object: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}

	log.Debugf("fetched %d bytes from %s", len(data), s)
	return data, nil
}

func (s *S3) String() string {
	return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Key)
}
