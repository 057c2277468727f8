// Package config loads mergeflow.yaml with ${VAR} expansion and
// environment fallbacks for secrets.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/mergeflow/internal/campaign"
	"github.com/dmitrymomot/mergeflow/pkg/db"
	"github.com/dmitrymomot/mergeflow/pkg/gotenberg"
	"github.com/dmitrymomot/mergeflow/pkg/logger"
	"github.com/dmitrymomot/mergeflow/pkg/mailer"
	"github.com/dmitrymomot/mergeflow/pkg/mailer/graph"
	"github.com/dmitrymomot/mergeflow/pkg/mailer/resend"
	"github.com/dmitrymomot/mergeflow/pkg/storage"
)

// DefaultPath is read when no path is given and MERGEFLOW_CONFIG is unset.
const DefaultPath = "mergeflow.yaml"

// Recipient table sources.
const (
	SourcePostgres = "postgres"
	SourceCSV      = "csv"
)

// Template sources.
const (
	TemplatesDir     = "dir"
	TemplatesStorage = "storage"
)

// Bounce checker providers.
const (
	BouncesGraph  = "graph"
	BouncesResend = "resend"
)

type Config struct {
	Log        logger.Config    `yaml:"log"`
	Database   db.Config        `yaml:"database"`
	Storage    storage.Config   `yaml:"storage"`
	Gotenberg  gotenberg.Config `yaml:"gotenberg"`
	Graph      graph.Config     `yaml:"graph"`
	Mail       MailConfig       `yaml:"mail"`
	Campaign   campaign.Config  `yaml:"campaign"`
	Recipients RecipientsConfig `yaml:"recipients"`
	Templates  TemplatesConfig  `yaml:"templates"`
	Server     ServerConfig     `yaml:"server"`
	Jobs       JobsConfig       `yaml:"jobs"`
}

type MailConfig struct {
	mailer.Config `yaml:",inline"`
	Resend        resend.Config `yaml:"resend"`
	// Bounces picks the bounce checker: "graph" or "resend".
	Bounces string `yaml:"bounces"`
}

type RecipientsConfig struct {
	// Source is "postgres" or "csv".
	Source  string `yaml:"source"`
	CSVPath string `yaml:"csv_path"`
	// Sheet names the recipient table inside Postgres.
	Sheet string `yaml:"sheet"`
}

type TemplatesConfig struct {
	// Source is "dir" or "storage".
	Source string `yaml:"source"`
	Dir    string `yaml:"dir"`
	// Prefix is the object key prefix for the storage source.
	Prefix string `yaml:"prefix"`
	// Layouts holds mail layouts referenced by mail.layout.
	Layouts string `yaml:"layouts"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type JobsConfig struct {
	MaxWorkers int `yaml:"max_workers"`
	// Cron expressions. Empty disables the schedule.
	BouncePoll  string `yaml:"bounce_poll"`
	OrphanAudit string `yaml:"orphan_audit"`
}

// Load reads the file at path. An empty path falls back to
// MERGEFLOW_CONFIG and then DefaultPath; only an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = envOrDefault("MERGEFLOW_CONFIG", DefaultPath)
		explicit = os.Getenv("MERGEFLOW_CONFIG") != ""
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		data = nil
	case err != nil:
		return nil, fmt.Errorf("%w: %s: %v", ErrRead, path, err)
	}
	return Parse(data)
}

// Parse decodes YAML after expanding ${VAR} references, then applies
// environment fallbacks and defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if len(data) > 0 {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Log.Level = firstNonEmpty(c.Log.Level, os.Getenv("LOG_LEVEL"))
	c.Log.Sentry.DSN = firstNonEmpty(c.Log.Sentry.DSN, os.Getenv("SENTRY_DSN"))
	c.Database.ConnectionString = firstNonEmpty(c.Database.ConnectionString, os.Getenv("DATABASE_URL"))
	c.Storage.AccessKey = firstNonEmpty(c.Storage.AccessKey, os.Getenv("S3_ACCESS_KEY"))
	c.Storage.SecretKey = firstNonEmpty(c.Storage.SecretKey, os.Getenv("S3_SECRET_KEY"))
	c.Gotenberg.URL = firstNonEmpty(c.Gotenberg.URL, os.Getenv("GOTENBERG_URL"))
	c.Graph.TenantID = firstNonEmpty(c.Graph.TenantID, os.Getenv("GRAPH_TENANT_ID"))
	c.Graph.ClientID = firstNonEmpty(c.Graph.ClientID, os.Getenv("GRAPH_CLIENT_ID"))
	c.Graph.ClientSecret = firstNonEmpty(c.Graph.ClientSecret, os.Getenv("GRAPH_CLIENT_SECRET"))
	c.Mail.Resend.APIKey = firstNonEmpty(c.Mail.Resend.APIKey, os.Getenv("RESEND_API_KEY"))
	c.Server.Addr = firstNonEmpty(c.Server.Addr, portAddr(os.Getenv("PORT")))
}

func (c *Config) applyDefaults() {
	c.Log.Level = firstNonEmpty(c.Log.Level, "info")
	c.Log.Format = firstNonEmpty(c.Log.Format, logger.FormatJSON)

	c.Database = c.Database.WithDefaults()
	c.Campaign = c.Campaign.WithDefaults()

	if c.Recipients.Source == "" {
		c.Recipients.Source = SourcePostgres
		if c.Recipients.CSVPath != "" {
			c.Recipients.Source = SourceCSV
		}
	}
	c.Recipients.Source = strings.ToLower(c.Recipients.Source)

	c.Templates.Source = strings.ToLower(firstNonEmpty(c.Templates.Source, TemplatesDir))
	c.Templates.Dir = firstNonEmpty(c.Templates.Dir, "templates")
	c.Templates.Prefix = firstNonEmpty(c.Templates.Prefix, "templates")

	if c.Mail.Bounces == "" {
		c.Mail.Bounces = BouncesResend
		if c.Graph.TenantID != "" {
			c.Mail.Bounces = BouncesGraph
		}
	}

	c.Server.Addr = firstNonEmpty(c.Server.Addr, ":8080")
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Jobs.MaxWorkers <= 0 {
		c.Jobs.MaxWorkers = 1
	}
}

// Require returns a MissingKeyError for the first key without a value.
// Keys use the dotted YAML path, e.g. "campaign.template". When an artifact
// location is among the keys, the storage locations must also be disjoint.
func (c *Config) Require(keys ...string) error {
	locations := false
	for _, key := range keys {
		get, ok := lookups[key]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		if strings.TrimSpace(get(c)) == "" {
			return &MissingKeyError{Key: key}
		}
		if key == "campaign.documents_location" || key == "campaign.pdfs_location" {
			locations = true
		}
	}
	if locations {
		return c.CheckLocations()
	}
	return nil
}

// CheckLocations returns an OverlapError when two bucket prefixes are equal
// or one is nested below the other. Orphan scans list a location
// recursively, so overlapping prefixes would expose unrelated objects.
func (c *Config) CheckLocations() error {
	trash := firstNonEmpty(c.Storage.TrashPrefix, storage.DefaultTrashPrefix)
	type location struct{ key, prefix string }
	all := []location{
		{"campaign.documents_location", c.Campaign.DocumentsLocation},
		{"campaign.pdfs_location", c.Campaign.PDFsLocation},
		{"storage.trash_prefix", trash},
	}
	if c.Templates.Source == TemplatesStorage {
		all = append(all, location{"templates.prefix", c.Templates.Prefix})
	}

	for i, a := range all {
		pa := cleanPrefix(a.prefix)
		if pa == "" {
			continue
		}
		for _, b := range all[i+1:] {
			pb := cleanPrefix(b.prefix)
			if pb == "" {
				continue
			}
			if pa == pb || strings.HasPrefix(pa, pb+"/") || strings.HasPrefix(pb, pa+"/") {
				return &OverlapError{Key: a.key, Other: b.key}
			}
		}
	}
	return nil
}

func cleanPrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

var lookups = map[string]func(*Config) string{
	"campaign.template":           func(c *Config) string { return c.Campaign.Template },
	"campaign.documents_location": func(c *Config) string { return c.Campaign.DocumentsLocation },
	"campaign.pdfs_location":      func(c *Config) string { return c.Campaign.PDFsLocation },
	"database.url":                func(c *Config) string { return c.Database.ConnectionString },
	"recipients.csv_path":         func(c *Config) string { return c.Recipients.CSVPath },
	"storage.bucket":              func(c *Config) string { return c.Storage.Bucket },
	"storage.access_key":          func(c *Config) string { return c.Storage.AccessKey },
	"storage.secret_key":          func(c *Config) string { return c.Storage.SecretKey },
	"gotenberg.url":               func(c *Config) string { return c.Gotenberg.URL },
	"mail.resend.api_key":         func(c *Config) string { return c.Mail.Resend.APIKey },
	"mail.resend.sender_email":    func(c *Config) string { return c.Mail.Resend.SenderEmail },
	"graph.tenant_id":             func(c *Config) string { return c.Graph.TenantID },
	"graph.client_id":             func(c *Config) string { return c.Graph.ClientID },
	"graph.client_secret":         func(c *Config) string { return c.Graph.ClientSecret },
	"graph.mailbox":               func(c *Config) string { return c.Graph.Mailbox },
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func portAddr(port string) string {
	if _, err := strconv.Atoi(port); err != nil {
		return ""
	}
	return ":" + port
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
