package storage

import (
	"fmt"
	"time"
)

const (
	DefaultRegion      = "us-east-1"
	DefaultTrashPrefix = ".trash"
)

// Config describes an S3 compatible bucket. Endpoint and PathStyle are only
// needed for MinIO and similar services.
type Config struct {
	Bucket      string `yaml:"bucket"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	Endpoint    string `yaml:"endpoint"`
	Region      string `yaml:"region"`
	TrashPrefix string `yaml:"trash_prefix"`
	PathStyle   bool   `yaml:"path_style"`
}

// FileInfo describes a stored object. Name is the display name, which for
// generated keys is the name passed to WithName.
type FileInfo struct {
	Modified    time.Time
	Key         string
	Name        string
	ContentType string
	Size        int64
}

func (c Config) withDefaults() Config {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.TrashPrefix == "" {
		c.TrashPrefix = DefaultTrashPrefix
	}
	return c
}

func (c Config) validate() error {
	for field, v := range map[string]string{
		"bucket":     c.Bucket,
		"access_key": c.AccessKey,
		"secret_key": c.SecretKey,
	} {
		if v == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidConfig, field)
		}
	}
	return nil
}
