package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tabkit/tabkit/pkg/errors"
)

// S3Config configures the S3 snapshot store.
type S3Config struct {
	// Bucket holds the snapshot objects.
	Bucket string

	// Prefix is prepended to all snapshot keys.
	Prefix string

	// Region selects the AWS region.
	Region string

	// Endpoint overrides the default S3 endpoint for S3-compatible
	// services such as MinIO or LocalStack.
	Endpoint string

	// Static credentials; the default chain applies when empty.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// UsePathStyle forces path-style addressing.
	UsePathStyle bool

	// Timeout bounds each S3 operation.
	Timeout time.Duration

	// StorageClass for snapshot objects.
	StorageClass types.StorageClass

	// ServerSideEncryption enables SSE-S3 encryption.
	ServerSideEncryption bool
}

// DefaultS3Config returns settings for a standard bucket layout.
func DefaultS3Config(bucket string) S3Config {
	return S3Config{
		Bucket:       bucket,
		Prefix:       "snapshots/",
		Timeout:      30 * time.Second,
		StorageClass: types.StorageClassStandard,
	}
}

// S3Store keeps snapshots as JSON objects in an S3 bucket.
type S3Store struct {
	cfg    S3Config
	client *s3.Client
}

// NewS3Store creates an S3 store, loading AWS configuration from the
// default chain unless static credentials are given.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New(errors.CodeSnapshot, "s3 store needs a bucket")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				cfg.SessionToken,
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshot, "load aws config")
	}

	s3Opts := []func(*s3.Options){}
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Store{cfg: cfg, client: s3.NewFromConfig(awsCfg, s3Opts...)}, nil
}

// Name identifies the store implementation.
func (s *S3Store) Name() string {
	return "s3"
}

func (s *S3Store) key(id string) string {
	return s.cfg.Prefix + id + ".json"
}

// Save uploads the state as a JSON object.
func (s *S3Store) Save(ctx context.Context, st *State) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	data, err := json.Marshal(st)
	if err != nil {
		return errors.Wrapf(err, errors.CodeSnapshot, "marshal snapshot %s", st.ID)
	}

	input := &s3.PutObjectInput{
		Bucket:       aws.String(s.cfg.Bucket),
		Key:          aws.String(s.key(st.ID)),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("application/json"),
		StorageClass: s.cfg.StorageClass,
	}
	if s.cfg.ServerSideEncryption {
		input.ServerSideEncryption = types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return errors.Wrapf(err, errors.CodeSnapshot, "upload snapshot %s", st.ID)
	}
	return nil
}

// Load downloads a snapshot by id.
func (s *S3Store) Load(ctx context.Context, id string) (*State, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeSnapshot, "download snapshot %s", id)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeSnapshot, "read snapshot %s", id)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, errors.Wrapf(err, errors.CodeSnapshot, "parse snapshot %s", id)
	}
	return &st, nil
}

// List pages through the key prefix and returns all snapshots, newest
// first. Objects that fail to parse are skipped.
func (s *S3Store) List(ctx context.Context) ([]*State, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var states []*State
	var continuationToken *string

	for {
		output, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.cfg.Bucket),
			Prefix:            aws.String(s.cfg.Prefix),
			ContinuationToken: continuationToken,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeSnapshot, "list snapshot objects")
		}

		for _, obj := range output.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			id := strings.TrimSuffix(strings.TrimPrefix(key, s.cfg.Prefix), ".json")
			st, err := s.Load(ctx, id)
			if err != nil {
				continue
			}
			states = append(states, st)
		}

		if !aws.ToBool(output.IsTruncated) {
			break
		}
		continuationToken = output.NextContinuationToken
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].CreatedAt.After(states[j].CreatedAt)
	})
	return states, nil
}

// Delete removes a snapshot object.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.key(id)),
	}); err != nil {
		return errors.Wrapf(err, errors.CodeSnapshot, "delete snapshot %s", id)
	}
	return nil
}

// Compile-time interface check
var _ Store = (*S3Store)(nil)
