// Package publish uploads build artifacts to an S3 bucket so they can be
// served from a CDN.
package publish

import (
	"context"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/injector/internal/errors"
	"github.com/vango-dev/injector/pkg/assets"
)

// Client is the subset of the S3 API used by Publisher.
type Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures a Publisher.
type Options struct {
	// Bucket is the destination bucket. Required.
	Bucket string

	// Prefix is prepended to every object key.
	Prefix string

	// CacheControl is sent with every object.
	CacheControl string

	// Logger is used for upload logs. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Object describes one uploaded file.
type Object struct {
	Path        string
	Key         string
	ContentType string
	Size        int64
}

// Publisher uploads files to S3.
type Publisher struct {
	client Client
	opts   Options
	logger *slog.Logger
}

// New creates a Publisher.
func New(client Client, opts Options) (*Publisher, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("E152")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, opts: opts, logger: logger}, nil
}

// NewFromConfig creates a Publisher backed by an S3 client built from the
// default AWS credential chain. region, when set, overrides the environment.
//
// Example usage:
//
//	p, err := publish.NewFromConfig(ctx, "eu-west-1", publish.Options{
//	    Bucket: "my-assets",
//	    Prefix: "assets/",
//	})
func NewFromConfig(ctx context.Context, region string, opts Options) (*Publisher, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.New("E150").WithDetail("loading AWS configuration").Wrap(err)
	}
	return New(s3.NewFromConfig(cfg), opts)
}

// Key returns the object key for a local file.
func (p *Publisher) Key(file string) string {
	return path.Join(p.opts.Prefix, filepath.Base(file))
}

// Publish uploads every file in order and stops at the first failure.
// The objects uploaded before the failure are returned with the error.
func (p *Publisher) Publish(ctx context.Context, files []string) ([]Object, error) {
	objects := make([]Object, 0, len(files))

	for _, file := range files {
		obj, err := p.upload(ctx, file)
		if err != nil {
			return objects, err
		}
		p.logger.Info("published", "bucket", p.opts.Bucket, "key", obj.Key, "bytes", obj.Size)
		objects = append(objects, obj)
	}

	return objects, nil
}

func (p *Publisher) upload(ctx context.Context, file string) (Object, error) {
	f, err := os.Open(file)
	if err != nil {
		return Object{}, errors.New("E150").WithPath(file).Wrap(err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Object{}, errors.New("E150").WithPath(file).Wrap(err)
	}

	obj := Object{
		Path:        file,
		Key:         p.Key(file),
		ContentType: contentType(file),
		Size:        info.Size(),
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.opts.Bucket),
		Key:           aws.String(obj.Key),
		Body:          f,
		ContentType:   aws.String(obj.ContentType),
		ContentLength: aws.Int64(obj.Size),
	}
	if p.opts.CacheControl != "" {
		input.CacheControl = aws.String(p.opts.CacheControl)
	}

	if _, err := p.client.PutObject(ctx, input); err != nil {
		return Object{}, errors.New("E150").
			WithPath(file).
			WithDetail("s3://" + p.opts.Bucket + "/" + obj.Key).
			Wrap(err)
	}
	return obj, nil
}

func contentType(file string) string {
	switch ext := filepath.Ext(file); ext {
	case ".js":
		return assets.Script.ContentType()
	case ".css":
		return assets.Style.ContentType()
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}
