// Package s3 snapshots the in-memory state into two JSON objects in an
// S3-compatible bucket (AWS S3 or MinIO), one object per collection.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"orgmatrix/internal/infra/persistence/memory"
	"orgmatrix/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

const (
	keyOrganizations = "state/organizations.json"
	keyMatrix        = "state/matrix.json"

	contentTypeJSON = "application/json"
)

// API is the subset of the S3 client the store depends on.
type API interface {
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds explicit construction parameters. Credentials fall back to the
// default AWS chain when not set.
type Config struct {
	Region          string
	Bucket          string
	Endpoint        string // optional; enables custom endpoint (e.g. MinIO)
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	PathStyle       bool
}

// Store wraps the in-memory store and snapshots its state into S3.
type Store struct {
	*memory.Store
	api    API
	bucket string
}

// New creates an S3-backed store from Config and hydrates the in-memory store
// from any persisted snapshot objects.
func New(ctx context.Context, cfg Config, engine *domain.RulesEngine) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithAPI(ctx, client, cfg.Bucket, engine)
}

// NewWithAPI builds the store around an existing S3 API client.
func NewWithAPI(ctx context.Context, api API, bucket string, engine *domain.RulesEngine) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	s := &Store{Store: memory.NewStore(engine), api: api, bucket: bucket}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) getObject(ctx context.Context, key string) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) load(ctx context.Context) error {
	var snapshot memory.Snapshot
	loaded := false
	if data, err := s.getObject(ctx, keyOrganizations); err != nil {
		return err
	} else if data != nil {
		if err := json.Unmarshal(data, &snapshot.Organizations); err != nil {
			return fmt.Errorf("decode organizations: %w", err)
		}
		loaded = true
	}
	if data, err := s.getObject(ctx, keyMatrix); err != nil {
		return err
	} else if data != nil {
		if err := json.Unmarshal(data, &snapshot.Matrix); err != nil {
			return fmt.Errorf("decode matrix: %w", err)
		}
		loaded = true
	}
	if loaded {
		s.ImportState(snapshot)
	}
	return nil
}

func (s *Store) persist(ctx context.Context) error {
	snapshot := s.ExportState()
	payloads := []struct {
		key   string
		value any
	}{
		{keyOrganizations, snapshot.Organizations},
		{keyMatrix, snapshot.Matrix},
	}
	contentType := contentTypeJSON
	for _, p := range payloads {
		data, err := json.Marshal(p.value)
		if err != nil {
			return err
		}
		key := p.key
		if _, err := s.api.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      &s.bucket,
			Key:         &key,
			Body:        bytes.NewReader(data),
			ContentType: &contentType,
		}); err != nil {
			return fmt.Errorf("put %s: %w", p.key, err)
		}
	}
	return nil
}

// RunInTransaction applies fn within a transaction, then snapshots the state
// to S3 if the commit succeeded.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if pErr := s.persist(ctx); pErr != nil {
		return res, domain.PersistError{Err: pErr}
	}
	return res, nil
}

// Bucket returns the configured bucket name.
func (s *Store) Bucket() string { return s.bucket }
