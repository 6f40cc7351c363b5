package record

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	pkgerrors "github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/errors"
)

// S3Config points a store at one bucket. Endpoint is optional and used for
// S3-compatible object stores.
type S3Config struct {
	Endpoint  string `env:"ENDPOINT"`
	Region    string `env:"REGION"     envDefault:"us-east-1"`
	Bucket    string `env:"BUCKET"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
}

// s3Store keeps records as objects in one bucket. Line appends are
// read-modify-write since object stores cannot append in place; the single
// writer is the vote flusher, which serializes its own calls.
type s3Store struct {
	client *s3.Client
	bucket string
}

func NewS3(ctx context.Context, cfg S3Config) (Store, error) {
	if cfg.Bucket == "" {
		return nil, pkgerrors.ErrEmptyKey
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *s3Store) List(ctx context.Context, prefix string) ([]string, error) {
	var paths []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			paths = append(paths, aws.ToString(obj.Key))
		}
	}

	return paths, nil
}

func (s *s3Store) get(ctx context.Context, path string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var nk *types.NoSuchKey
		if errors.As(err, &nk) {
			return nil, pkgerrors.ErrNotFound
		}

		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (s *s3Store) put(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})

	return err
}

func (s *s3Store) ReadJSON(ctx context.Context, path string, v any) error {
	data, err := s.get(ctx, path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, v)
}

func (s *s3Store) WriteJSON(ctx context.Context, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return s.put(ctx, path, data, "application/json")
}

func (s *s3Store) AppendLine(ctx context.Context, path, line string) error {
	existing, err := s.get(ctx, path)
	if err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return err
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString(line)
	buf.WriteByte('\n')

	return s.put(ctx, path, buf.Bytes(), "application/jsonl")
}

func (s *s3Store) ReadLines(ctx context.Context, path string) ([]string, error) {
	data, err := s.get(ctx, path)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, nil
		}

		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	return lines, nil
}

func (s *s3Store) Upload(ctx context.Context, localPath, remotePath, message string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return errors.Join(pkgerrors.ErrTransfer, err)
	}
	if err := s.put(ctx, remotePath, data, "application/octet-stream"); err != nil {
		return errors.Join(pkgerrors.ErrTransfer, fmt.Errorf("%s: %w", message, err))
	}

	return nil
}
