// Package archive exports daily analytics snapshots to S3 so longer-term
// trend tooling can read rollups without touching the live database.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/ignite/leadscore/internal/analytics"
)

// S3Archiver writes analytics overviews to an S3 bucket.
type S3Archiver struct {
	client *s3.Client
	bucket string
}

// NewS3Archiver creates an archiver using the default credential chain, or
// the named shared profile when one is configured.
func NewS3Archiver(ctx context.Context, bucket, region, profile string) (*S3Archiver, error) {
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

	return &S3Archiver{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// ArchiveOverview stores one user's analytics overview under
// scores/analytics/<user>/<date>.json. Same-day writes overwrite, so the
// object always holds the latest snapshot for that day.
func (a *S3Archiver) ArchiveOverview(ctx context.Context, userID uuid.UUID, overview *analytics.Overview) error {
	data, err := json.Marshal(overview)
	if err != nil {
		return fmt.Errorf("marshaling overview: %w", err)
	}

	key := fmt.Sprintf("scores/analytics/%s/%s.json",
		userID.String(), time.Now().UTC().Format("2006-01-02"))

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("putting snapshot to S3: %w", err)
	}
	return nil
}
