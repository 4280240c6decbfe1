// Package bucket reads the authoritative listing of the upload bucket and
// builds public access URLs for its objects.
package bucket

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophdrop/internal/client/models"
	"github.com/dmitrijs2005/gophdrop/internal/s3x"
)

// DefaultLimit caps a listing when no limit is configured.
const DefaultLimit = 100

// ListAPI is the part of the S3 client the lister needs.
type ListAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type Lister struct {
	api           ListAPI
	bucket        string
	publicBaseURL string
	limit         int
}

// NewLister lists bucket through api. publicBaseURL may be empty for private
// buckets; limit <= 0 means DefaultLimit.
func NewLister(api ListAPI, bucket, publicBaseURL string, limit int) *Lister {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Lister{
		api:           api,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		limit:         limit,
	}
}

func (l *Lister) Bucket() string { return l.bucket }

// List returns up to limit objects in listing order. Folder placeholders are
// skipped.
func (l *Lister) List(ctx context.Context) ([]models.RemoteObject, error) {
	p := s3.NewListObjectsV2Paginator(l.api, &s3.ListObjectsV2Input{
		Bucket:  aws.String(l.bucket),
		MaxKeys: aws.Int32(int32(min(l.limit, 1000))),
	})

	out := make([]models.RemoteObject, 0, l.limit)
	for p.HasMorePages() && len(out) < l.limit {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			name := aws.ToString(obj.Key)
			if name == "" || strings.HasSuffix(name, "/") {
				continue
			}
			out = append(out, models.RemoteObject{
				Name:         name,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
			if len(out) == l.limit {
				break
			}
		}
	}
	return out, nil
}

// PublicPrefix is the part of every public URL that precedes the object name,
// or "" when no public base URL is configured.
func (l *Lister) PublicPrefix() string {
	return s3x.PublicPrefix(l.publicBaseURL, l.bucket)
}

// PublicURL maps an object name to its public access URL. It returns "" for
// private buckets.
func (l *Lister) PublicURL(name string) string {
	return s3x.PublicURL(l.PublicPrefix(), name)
}
