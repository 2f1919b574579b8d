package cmd

import (
	"time"

	"github.com/isometry/traffic-dash/internal/config"
	"github.com/isometry/traffic-dash/internal/helpers"
)

var svcEnvMapString = map[*string]boundEnvVar[string]{
	&config.Service.Addr: {
		Name:        "service-host-addr",
		Description: "The address to serve the service on",
		Short:       helpers.Ptr("H"),
	},
	&config.Service.Port: {
		Name:        "service-host-port",
		Description: "The port to serve the service on",
		Short:       helpers.Ptr("p"),
	},
	&config.Service.DataPath: {
		Name:        "service-data-path",
		Description: "The path the upstream JSON is relayed on",
		Short:       helpers.Ptr("P"),
	},
}

var svcEnvMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Service.Timeout: {
		Name:        "service-io-timeout",
		Description: "The timeout for I/O operations. Keep it above --upstream-timeout",
		Short:       helpers.Ptr("t"),
	},
	&config.Service.ShutdownTimeout: {
		Name:        "service-shutdown-timeout",
		Description: "How long in-flight requests are given to complete on shutdown",
	},
}
