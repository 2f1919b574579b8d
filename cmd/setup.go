package cmd

import (
	"context"
	"io/fs"
	"log/slog"

	"github.com/isometry/traffic-dash/internal/assets"
	"github.com/isometry/traffic-dash/internal/config"
	"github.com/isometry/traffic-dash/internal/controllers/aws"
	"github.com/isometry/traffic-dash/internal/handler"
	"github.com/isometry/traffic-dash/internal/helpers"
	"github.com/isometry/traffic-dash/internal/runtime"
	"github.com/isometry/traffic-dash/internal/upstream"
	"github.com/pkg/errors"
)

// setup builds the runtime shared by every mode from the current configuration.
// AWS is only contacted when the upstream URL lives in SSM or the assets live in S3.
func setup(ctx context.Context, logger *slog.Logger) (*runtime.Runtime, error) {
	if logger == nil {
		logger = helpers.NewNoopLogger()
	}

	var awsCtl *aws.Controller
	if config.Upstream.SSMKey != "" || config.Static.S3.Bucket != "" {
		logger.Debug("creating AWS controller...")
		var err error
		awsCtl, err = aws.NewController(
			aws.WithContext(ctx),
			aws.WithLogger(logger.With("component", "aws-controller")))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AWS controller")
		}
	}

	upstreamURL := config.Upstream.URL
	if config.Upstream.SSMKey != "" {
		logger.Debug("resolving upstream URL from SSM...", slog.String("key", config.Upstream.SSMKey))
		v, err := awsCtl.GetSecret(config.Upstream.SSMKey, true)
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve upstream URL")
		}
		upstreamURL = *v
	}

	logger.Debug("creating upstream client...")
	client, err := upstream.New(
		upstream.WithURL(upstreamURL),
		upstream.WithTimeout(config.Upstream.Timeout),
		upstream.WithMaxBodyBytes(config.Upstream.MaxBodyBytes),
		upstream.WithLogger(logger.With("component", "upstream")))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create upstream client")
	}

	var src fs.FS
	if config.Static.S3.Bucket != "" {
		logger.Debug("serving assets from S3", slog.String("bucket", config.Static.S3.Bucket), slog.String("prefix", config.Static.S3.Prefix))
		src = assets.NewS3(awsCtl, config.Static.S3.Bucket, config.Static.S3.Prefix)
	} else {
		logger.Debug("serving assets from directory", slog.String("dir", config.Static.Dir))
		src, err = assets.Dir(config.Static.Dir)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("creating handler...")
	hdl, err := handler.NewHandler(
		handler.WithUpstream(client),
		handler.WithAssets(src),
		handler.WithDataPath(config.Service.DataPath),
		handler.WithStaticPrefix(config.Static.Prefix),
		handler.WithLambdaPayloadType(config.Lambda.PayloadType),
		handler.WithLogger(logger.With("component", "handler")))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create handler")
	}

	logger.Debug("creating runtime...")
	return runtime.NewRuntime(hdl,
		runtime.WithLogger(logger.With("component", "runtime"))), nil
}
