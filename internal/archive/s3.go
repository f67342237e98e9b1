// Package archive stores timestamped JSON copies of computed dashboard
// views in S3 for offline analysis and audit. Archival is best-effort;
// the engine never reads these objects back.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/strivefit/engagement-engine/internal/service/insights"
)

// S3Archive implements insights.Archiver against an S3 bucket.
type S3Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Archive creates an archiver. profile may be empty to use the
// default credential chain.
func NewS3Archive(ctx context.Context, bucket, prefix, region, profile string) (*S3Archive, error) {
	var cfg aws.Config
	var err error

	if profile != "" {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
			awsconfig.WithSharedConfigProfile(profile),
		)
	} else {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &S3Archive{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: strings.TrimSuffix(prefix, "/"),
	}, nil
}

// Store writes the view as a timestamped JSON object, keyed by the
// view's own generation time so re-archiving an identical view is
// idempotent.
func (a *S3Archive) Store(ctx context.Context, view *insights.DashboardView) error {
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dashboard view: %w", err)
	}

	ts := view.GeneratedAt.UTC()
	key := fmt.Sprintf("%s/%s/dashboard-%s.json",
		a.prefix, ts.Format("2006/01/02"), ts.Format("150405"))

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive dashboard view: %w", err)
	}

	log.Printf("[archive] stored s3://%s/%s (%d bytes)", a.bucket, key, len(data))
	return nil
}
