// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the settings of the signal store.
//
// Configuration Sources, by precedence:
//  1. Environment variables (SIGNAL_STORE_*)
//  2. YAML configuration files, later files overriding earlier ones
//  3. Default values
//
// Usage:
//
//	settings, err := config.NewSettings("/etc/signal-store/config.yml")
//	if err != nil {
//	    return err
//	}
//	sc, err := factory.Open(settings.Datasets.Acquired.Kind, settings.Datasets.Acquired.Path,
//	    settings.ContextOptions()...)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/cloudzero/signal-store/app/config"
	"github.com/cloudzero/signal-store/app/storage/disk"
	"github.com/cloudzero/signal-store/app/storage/factory"
	"github.com/cloudzero/signal-store/app/utils/lock"
)

const (
	// DefaultDatasetRoot is the directory holding the dataset directories
	// whose path is not set explicitly.
	DefaultDatasetRoot = "data"

	// DefaultDatasetKind is the storage context kind of datasets that do not
	// name one.
	DefaultDatasetKind = disk.TextKind

	// DefaultWorkers bounds concurrent copies during a migration.
	DefaultWorkers = 4
)

var _ config.Serializable = (*Settings)(nil)

// Settings is the complete configuration of the signal store.
type Settings struct {
	Logging    Logging    `yaml:"logging"`
	Datasets   Datasets   `yaml:"datasets"`
	Decoding   Decoding   `yaml:"decoding"`
	Encoding   Encoding   `yaml:"encoding"`
	Locking    Locking    `yaml:"locking"`
	Processing Processing `yaml:"processing"`
}

type Logging struct {
	Level string `yaml:"level" env:"SIGNAL_STORE_LOG_LEVEL" env-default:"info" env-description:"logging level such as debug, info, error"`
}

// Dataset names the storage context of one logical dataset: the factory kind
// and the resource path handed to it.
type Dataset struct {
	Kind string `yaml:"kind" env:"KIND" env-description:"storage context kind: archivo, pickle or sqlite"`
	Path string `yaml:"path" env:"PATH" env-description:"base directory of the dataset"`
}

type Datasets struct {
	Root      string  `yaml:"root" env:"SIGNAL_STORE_DATA_ROOT" env-default:"data" env-description:"directory of datasets without an explicit path"`
	Acquired  Dataset `yaml:"acquired" env-prefix:"SIGNAL_STORE_ACQUIRED_"`
	Processed Dataset `yaml:"processed" env-prefix:"SIGNAL_STORE_PROCESSED_"`
}

type Decoding struct {
	Strict bool `yaml:"strict" env:"SIGNAL_STORE_STRICT_DECODING" env-default:"false" env-description:"fail retrievals of records with unusable tokens"`
}

// Compression algorithms of binary records.
const (
	CompressionNone   = "none"
	CompressionBrotli = "brotli"
	CompressionSnappy = "snappy"
)

type Encoding struct {
	Compression      string `yaml:"compression" env:"SIGNAL_STORE_COMPRESSION" env-default:"none" env-description:"compression of binary records: none, brotli or snappy"`
	CompressionLevel int    `yaml:"compression_level" env:"SIGNAL_STORE_COMPRESSION_LEVEL" env-default:"6" env-description:"brotli level of binary records"`
}

type Locking struct {
	Disabled      bool          `yaml:"disabled" env:"SIGNAL_STORE_LOCKING_DISABLED" env-description:"skip the per-id writer lock around every persist"`
	StaleTimeout  time.Duration `yaml:"stale_timeout" env:"SIGNAL_STORE_LOCK_STALE_TIMEOUT" env-default:"5s"`
	RetryInterval time.Duration `yaml:"retry_interval" env:"SIGNAL_STORE_LOCK_RETRY_INTERVAL" env-default:"50ms"`
	MaxRetry      int           `yaml:"max_retry" env:"SIGNAL_STORE_LOCK_MAX_RETRY" env-default:"40"`
}

type Processing struct {
	Threshold float64 `yaml:"threshold" env:"SIGNAL_STORE_THRESHOLD" env-default:"0.5" env-description:"values below the threshold are zeroed"`
	Workers   int     `yaml:"workers" env:"SIGNAL_STORE_WORKERS" env-default:"4" env-description:"concurrent copies during a migration"`
}

// NewSettings reads the given YAML files in order, applies the environment and
// validates the result. Without files, only the environment and defaults are
// used.
func NewSettings(configFiles ...string) (*Settings, error) {
	var cfg Settings

	read := false
	for _, cfgFile := range configFiles {
		if cfgFile == "" {
			continue
		}

		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("no config %s", cfgFile)
		}

		if err := cleanenv.ReadConfig(cfgFile, &cfg); err != nil {
			return nil, fmt.Errorf("config read %s: %w", cfgFile, err)
		}
		read = true
	}

	if !read {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config read environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "failed to validate settings")
	}

	return &cfg, nil
}

// Validate normalizes the settings and fills in what defaults can provide.
func (s *Settings) Validate() error {
	if err := s.Logging.Validate(); err != nil {
		return errors.Wrap(err, "logging validation")
	}
	if err := s.Datasets.Validate(); err != nil {
		return errors.Wrap(err, "datasets validation")
	}
	if err := s.Encoding.Validate(); err != nil {
		return errors.Wrap(err, "encoding validation")
	}
	if err := s.Locking.Validate(); err != nil {
		return errors.Wrap(err, "locking validation")
	}
	if err := s.Processing.Validate(); err != nil {
		return errors.Wrap(err, "processing validation")
	}
	return nil
}

func (s *Logging) Validate() error {
	s.Level = strings.ToLower(strings.TrimSpace(s.Level))
	if s.Level == "" {
		s.Level = zerolog.InfoLevel.String()
	}
	if _, err := zerolog.ParseLevel(s.Level); err != nil {
		return fmt.Errorf("invalid level %q: %w", s.Level, err)
	}
	return nil
}

func (s *Datasets) Validate() error {
	s.Root = strings.TrimSpace(s.Root)
	if s.Root == "" {
		s.Root = DefaultDatasetRoot
	}
	if err := s.Acquired.validate(s.Root, "acquired"); err != nil {
		return errors.Wrap(err, "acquired")
	}
	if err := s.Processed.validate(s.Root, "processed"); err != nil {
		return errors.Wrap(err, "processed")
	}
	if filepath.Clean(s.Acquired.Path) == filepath.Clean(s.Processed.Path) {
		return errors.New("acquired and processed datasets share a path")
	}
	return nil
}

func (d *Dataset) validate(root, name string) error {
	d.Kind = strings.TrimSpace(d.Kind)
	if d.Kind == "" {
		d.Kind = DefaultDatasetKind
	}
	known := false
	for _, k := range factory.Kinds() {
		if k == d.Kind {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown kind %q, expected one of %v", d.Kind, factory.Kinds())
	}

	d.Path = strings.TrimSpace(d.Path)
	if d.Path == "" {
		d.Path = filepath.Join(root, name)
	}
	return nil
}

func (s *Encoding) Validate() error {
	s.Compression = strings.ToLower(strings.TrimSpace(s.Compression))
	switch s.Compression {
	case "":
		s.Compression = CompressionNone
		return nil
	case CompressionNone, CompressionSnappy:
		return nil
	case CompressionBrotli:
	default:
		return fmt.Errorf("unknown compression %q", s.Compression)
	}
	if s.CompressionLevel < brotli.BestSpeed || s.CompressionLevel > brotli.BestCompression {
		return fmt.Errorf("compression level %d out of range [%d, %d]", s.CompressionLevel, brotli.BestSpeed, brotli.BestCompression)
	}
	return nil
}

func (s *Locking) Validate() error {
	if s.StaleTimeout <= 0 {
		s.StaleTimeout = lock.DefaultStaleTimeout
	}
	if s.RetryInterval <= 0 {
		s.RetryInterval = lock.DefaultRetryInterval
	}
	if s.MaxRetry < 0 {
		return fmt.Errorf("max retry cannot be negative: %d", s.MaxRetry)
	}
	return nil
}

func (s *Processing) Validate() error {
	if s.Workers <= 0 {
		s.Workers = DefaultWorkers
	}
	return nil
}

// ContextOptions returns the factory options these settings select.
func (s *Settings) ContextOptions() []factory.Option {
	opts := []factory.Option{factory.WithStrictDecoding(s.Decoding.Strict)}
	switch s.Encoding.Compression {
	case CompressionBrotli:
		opts = append(opts, factory.WithCompressionLevel(s.Encoding.CompressionLevel))
	case CompressionSnappy:
		opts = append(opts, factory.WithSnappyCompression())
	default:
		opts = append(opts, factory.WithCompressionLevel(disk.NoCompression))
	}
	if s.Locking.Disabled {
		return append(opts, factory.WithoutLocking())
	}
	return append(opts, factory.WithLockOptions(
		lock.WithStaleTimeout(s.Locking.StaleTimeout),
		lock.WithRefreshInterval(s.Locking.StaleTimeout/4),
		lock.WithRetryInterval(s.Locking.RetryInterval),
		lock.WithMaxRetry(s.Locking.MaxRetry),
	))
}

// ToYAML encodes the settings as YAML
func (s *Settings) ToYAML() ([]byte, error) {
	raw, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode into yaml: %w", err)
	}
	return raw, nil
}

// ToBytes returns a serialized representation of the data in the class
func (s *Settings) ToBytes() ([]byte, error) {
	return s.ToYAML()
}
