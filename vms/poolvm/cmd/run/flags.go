// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/pflag"
)

const (
	DBDirKey           = "db-dir"
	GenesisFileKey     = "genesis-file"
	ConfigFileKey      = "config-file"
	HTTPAddressKey     = "http-address"
	AllowedOriginsKey  = "http-allowed-origins"
	AllowedHostsKey    = "http-allowed-hosts"
	ShutdownTimeoutKey = "http-shutdown-timeout"
	ReadTimeoutKey     = "http-read-timeout"
	WriteTimeoutKey    = "http-write-timeout"
)

var errMissingDBDir = errors.New("missing database directory")

func AddFlags(flags *pflag.FlagSet) {
	flags.String(DBDirKey, "", "Directory of the chain database (required)")
	flags.String(GenesisFileKey, "", "Genesis file used when the database is empty")
	flags.String(ConfigFileKey, "", "JSON file overriding the default VM config")
	flags.String(HTTPAddressKey, "127.0.0.1:9650", "Address the API server listens on")
	flags.StringSlice(AllowedOriginsKey, []string{"*"}, "Origins allowed to make cross-origin API calls")
	flags.StringSlice(AllowedHostsKey, []string{"localhost"}, "Host names the API server answers to")
	flags.Duration(ShutdownTimeoutKey, 10*time.Second, "Maximum time to wait for in-flight API calls on shutdown")
	flags.Duration(ReadTimeoutKey, 30*time.Second, "Maximum duration for reading an API request")
	flags.Duration(WriteTimeoutKey, 30*time.Second, "Maximum duration for writing an API response")
}

type Config struct {
	DBDir           string
	GenesisBytes    []byte
	ConfigBytes     []byte
	HTTPAddress     string
	AllowedOrigins  []string
	AllowedHosts    []string
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	dbDir, err := flags.GetString(DBDirKey)
	if err != nil {
		return nil, err
	}
	if dbDir == "" {
		return nil, errMissingDBDir
	}

	genesisBytes, err := readFileFlag(flags, GenesisFileKey)
	if err != nil {
		return nil, err
	}
	configBytes, err := readFileFlag(flags, ConfigFileKey)
	if err != nil {
		return nil, err
	}

	httpAddress, err := flags.GetString(HTTPAddressKey)
	if err != nil {
		return nil, err
	}
	allowedOrigins, err := flags.GetStringSlice(AllowedOriginsKey)
	if err != nil {
		return nil, err
	}
	allowedHosts, err := flags.GetStringSlice(AllowedHostsKey)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := flags.GetDuration(ShutdownTimeoutKey)
	if err != nil {
		return nil, err
	}
	readTimeout, err := flags.GetDuration(ReadTimeoutKey)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := flags.GetDuration(WriteTimeoutKey)
	if err != nil {
		return nil, err
	}

	return &Config{
		DBDir:           dbDir,
		GenesisBytes:    genesisBytes,
		ConfigBytes:     configBytes,
		HTTPAddress:     httpAddress,
		AllowedOrigins:  allowedOrigins,
		AllowedHosts:    allowedHosts,
		ShutdownTimeout: shutdownTimeout,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
	}, nil
}

// readFileFlag reads the file named by key. An unset flag reads as nil.
func readFileFlag(flags *pflag.FlagSet, key string) ([]byte, error) {
	path, err := flags.GetString(key)
	if err != nil || path == "" {
		return nil, err
	}
	return os.ReadFile(path)
}
