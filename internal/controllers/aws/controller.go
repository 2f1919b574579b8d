// Package aws provides the Controller struct that wraps AWS services and provides S3 and SSM functionality with context and logging support.
package aws

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/logging"
	"github.com/isometry/traffic-dash/internal/helpers"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// S3API is the subset of the S3 client used by the Controller.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// SSMAPI is the subset of the SSM client used by the Controller.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Controller represents a wrapper for AWS services providing S3 and SSM functionality with context and logging support.
type Controller struct {
	ctx    context.Context
	logger *slog.Logger

	config    *aws.Config
	s3Client  S3API
	ssmClient SSMAPI
	denied    *rate.Sometimes
}

// Object is an S3 object read in full.
type Object struct {
	Key          string
	Body         []byte
	ContentType  string
	LastModified time.Time
}

// NewController initializes a Controller with customizable options and default configurations if unspecified.
// The default AWS configuration is only loaded when a client was not injected.
func NewController(opts ...Option) (*Controller, error) {
	_inst := &Controller{}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.logger = _inst.logger.With("controller", "aws")
	if _inst.ctx == nil {
		_inst.ctx = context.Background()
	}
	_inst.denied = helpers.OnceAMinute()
	if _inst.config == nil && (_inst.s3Client == nil || _inst.ssmClient == nil) {
		_inst.logger.Debug("loading default AWS configuration...")
		cfg, err := config.LoadDefaultConfig(_inst.ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load AWS configuration")
		}
		cfg.Logger = newAWSLogger(_inst.logger)
		_inst.config = &cfg
	}

	if _inst.s3Client == nil {
		_inst.s3Client = s3.NewFromConfig(*_inst.config)
	}
	if _inst.ssmClient == nil {
		_inst.ssmClient = ssm.NewFromConfig(*_inst.config)
	}
	return _inst, nil
}

// GetSecret retrieves a value from SSM Parameter Store using the provided key.
// If encrypted is true, the value is returned decrypted.
func (a *Controller) GetSecret(key string, encrypted bool) (*string, error) {
	a.logger.With("key", key).Debug("fetching SSM parameter...")
	ssmResponse, err := a.ssmClient.GetParameter(a.ctx, &ssm.GetParameterInput{
		Name:           aws.String(key),
		WithDecryption: aws.Bool(encrypted),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load SSM parameters")
	}
	if ssmResponse.Parameter == nil || ssmResponse.Parameter.Value == nil {
		return nil, errors.Errorf("SSM parameter %s has no value", key)
	}
	return ssmResponse.Parameter.Value, nil
}

// GetS3Object reads the object stored under key in bucket.
// A missing object or bucket yields an error matching fs.ErrNotExist. So does AccessDenied,
// which S3 answers for missing keys when the caller lacks s3:ListBucket.
func (a *Controller) GetS3Object(ctx context.Context, bucket, key string) (*Object, error) {
	a.logger.Debug("fetching S3 object...", slog.String("bucket", bucket), slog.String("key", key))
	out, err := a.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		switch {
		case isAPIError(err, "NoSuchKey", "NoSuchBucket", "NotFound"):
			return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, fs.ErrNotExist)
		case isAPIError(err, "AccessDenied"):
			a.denied.Do(func() {
				a.logger.Warn("S3 denied access, reporting objects as missing; grant s3:GetObject and s3:ListBucket",
					slog.String("bucket", bucket), slog.String("key", key))
			})
			return nil, fmt.Errorf("s3://%s/%s: access denied: %w", bucket, key, fs.ErrNotExist)
		}
		return nil, errors.Wrap(err, "failed to get object from S3")
	}
	defer func() { _ = out.Body.Close() }()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read S3 object body")
	}
	obj := &Object{
		Key:         key,
		Body:        body,
		ContentType: helpers.String(out.ContentType),
	}
	if out.LastModified != nil {
		obj.LastModified = *out.LastModified
	}
	return obj, nil
}

func isAPIError(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return slices.Contains(codes, apiErr.ErrorCode())
}

type awsLogger struct {
	logger *slog.Logger
}

func newAWSLogger(logger *slog.Logger) *awsLogger {
	return &awsLogger{logger}
}

func (a *awsLogger) Logf(classification logging.Classification, format string, args ...any) {
	a.logger.Debug(fmt.Sprintf("[%v] %s", classification, fmt.Sprintf(format, args...)))
}
