package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gmllt/taskboard/internal/storage"
)

const (
	DriverS3     = "s3"
	DriverFile   = "file"
	DriverMemory = "memory"
)

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type StorageConfig struct {
	Driver  string        `yaml:"driver"`
	Key     string        `yaml:"key"`
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
}

type Config struct {
	Listen    string           `yaml:"listen"`
	StaticDir string           `yaml:"static_dir"`
	Log       LogConfig        `yaml:"log"`
	Storage   StorageConfig    `yaml:"storage"`
	S3        storage.S3Config `yaml:"s3"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverS3
	}
	if c.Storage.Key == "" {
		c.Storage.Key = "boards.json"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data"
	}
	if c.Storage.Timeout <= 0 {
		c.Storage.Timeout = 10 * time.Second
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverS3:
		if c.S3.Endpoint == "" {
			return errors.New("s3.endpoint is required for the s3 driver")
		}
		if c.S3.Bucket == "" {
			return errors.New("s3.bucket is required for the s3 driver")
		}
	case DriverFile, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
