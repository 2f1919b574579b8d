// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"go.yaml.in/yaml/v3"
)

const (
	// ModeService runs a long-lived HTTP server.
	ModeService = "service"
	// ModeLambda runs the handlers behind AWS Lambda.
	ModeLambda = "lambda"
)

var (
	// Global is a struct that contains the global configuration.
	Global global
	// Upstream is a struct that contains the configuration of the relayed JSON API.
	Upstream upstream
	// Static is a struct that contains the configuration of the static asset source.
	Static static
	// Service is a struct that contains the configuration for the service mode.
	Service service
	// Lambda is a struct that contains the configuration for the lambda mode.
	Lambda lambda
)

type global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"service"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
}

type upstream struct {
	// URL is the JSON endpoint relayed on the data path.
	URL string `yaml:"url,omitempty" default:"https://screenpalss.online/test/gettraffic.php"`
	// SSMKey, when set, names the SSM parameter holding the upstream URL. It takes precedence over URL.
	SSMKey string `yaml:"ssmKey,omitempty"`
	// Timeout bounds a single upstream round-trip, body included.
	Timeout time.Duration `yaml:"timeout,omitempty" default:"10s"`
	// MaxBodyBytes caps the relayed payload size.
	MaxBodyBytes int64 `yaml:"maxBodyBytes,omitempty" default:"10485760"`
}

type static struct {
	// Prefix is the URL prefix the assets are mounted on.
	Prefix string `yaml:"prefix,omitempty" default:"/static/"`
	// Dir is the local directory the assets are read from.
	Dir string `yaml:"dir,omitempty" default:"static"`
	// S3 switches the asset source to an S3 bucket when Bucket is set.
	S3 struct {
		Bucket string `yaml:"bucket,omitempty"`
		Prefix string `yaml:"prefix,omitempty"`
	} `yaml:"s3,omitempty"`
}

type service struct {
	// DataPath is the route of the upstream relay.
	DataPath        string        `yaml:"dataPath,omitempty" default:"/data"`
	Addr            string        `yaml:"addr,omitempty" default:"127.0.0.1"`
	Port            string        `yaml:"port,omitempty" default:"8000"`
	Timeout         time.Duration `yaml:"timeout,omitempty" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty" default:"10s"`
}

type lambda struct {
	PayloadType string `yaml:"payloadType,omitempty" default:"api-gateway-v2"`
}

// SetDefaults sets the default values for the configuration.
func SetDefaults() error {
	return errors.Join(
		defaults.Set(&Global),
		defaults.Set(&Upstream),
		defaults.Set(&Static),
		defaults.Set(&Service),
		defaults.Set(&Lambda),
	)
}

// LoadFromFile loads the configuration from a file.
func LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	type all struct {
		Global   global   `yaml:"global,omitempty"`
		Upstream upstream `yaml:"upstream,omitempty"`
		Static   static   `yaml:"static,omitempty"`
		Service  service  `yaml:"service,omitempty"`
		Lambda   lambda   `yaml:"lambda,omitempty"`
	}
	var a all
	if err = yaml.Unmarshal(content, &a); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	Global = a.Global
	Upstream = a.Upstream
	Static = a.Static
	Service = a.Service
	Lambda = a.Lambda

	return nil
}
