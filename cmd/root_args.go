package cmd

import (
	"time"

	"github.com/isometry/traffic-dash/internal/config"
	"github.com/isometry/traffic-dash/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'service' and 'lambda'",
		Short:       helpers.Ptr("m"),
	},
	&config.Upstream.URL: {
		Name:        "upstream-url",
		Description: "The JSON endpoint relayed on the data path",
		Short:       helpers.Ptr("u"),
	},
	&config.Upstream.SSMKey: {
		Name:        "upstream-ssm-key",
		Description: "The SSM parameter holding the upstream URL. Takes precedence over --upstream-url when set",
	},
	&config.Static.Prefix: {
		Name:        "static-prefix",
		Description: "The URL prefix the static assets are served under",
	},
	&config.Static.Dir: {
		Name:        "static-dir",
		Description: "The local directory the static assets are read from",
		Short:       helpers.Ptr("d"),
	},
	&config.Static.S3.Bucket: {
		Name:        "static-s3-bucket",
		Description: "Serve the static assets from this S3 bucket instead of --static-dir",
	},
	&config.Static.S3.Prefix: {
		Name:        "static-s3-prefix",
		Description: "The key prefix of the static assets in --static-s3-bucket",
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
}

var envMapCount = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Upstream.Timeout: {
		Name:        "upstream-timeout",
		Description: "The deadline of a single upstream request, body included",
	},
}

var envMapInt64 = map[*int64]boundEnvVar[int64]{
	&config.Upstream.MaxBodyBytes: {
		Name:        "upstream-max-body-bytes",
		Description: "The largest upstream payload relayed",
	},
}
