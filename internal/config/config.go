// Package config loads vpconvert settings from an HCL file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// EnvConfigPath names a configuration file to use when none is given
// explicitly.
const EnvConfigPath = "VPCONVERT_CONFIG"

// Config holds all settings of the converter and the service.
type Config struct {
	LogLevel  string
	LogFormat string

	Quantities  string
	Compression int
	OutputDir   string

	HTTPAddr         string
	ShutdownTimeout  time.Duration
	KafkaBrokers     []string
	KafkaJobsTopic   string
	KafkaResultTopic string
	KafkaGroupID     string

	// Source is the file the settings were read from, empty for defaults.
	Source string
}

type hclFile struct {
	LogLevel  *string     `hcl:"log_level,optional"`
	LogFormat *string     `hcl:"log_format,optional"`
	Convert   *hclConvert `hcl:"convert,block"`
	Service   *hclService `hcl:"service,block"`
}

type hclConvert struct {
	Quantities  *string `hcl:"quantities,optional"`
	Compression *int    `hcl:"compression,optional"`
	OutputDir   *string `hcl:"output_dir,optional"`
}

type hclService struct {
	HTTPAddr        *string   `hcl:"http_addr,optional"`
	ShutdownTimeout *string   `hcl:"shutdown_timeout,optional"`
	Kafka           *hclKafka `hcl:"kafka,block"`
}

type hclKafka struct {
	Brokers     []string `hcl:"brokers,optional"`
	JobsTopic   *string  `hcl:"jobs_topic,optional"`
	ResultTopic *string  `hcl:"result_topic,optional"`
	GroupID     *string  `hcl:"group_id,optional"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Quantities:       "",
		Compression:      6,
		HTTPAddr:         ":8080",
		ShutdownTimeout:  10 * time.Second,
		KafkaBrokers:     []string{"localhost:9092"},
		KafkaJobsTopic:   "vp-convert-jobs",
		KafkaResultTopic: "vp-convert-results",
		KafkaGroupID:     "vpconvert",
	}
}

// Load reads the configuration file at path, or the first existing
// candidate location when path is empty, and applies environment
// overrides. Defaults are used when no file exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfig()
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Candidates returns the locations searched for a configuration file, in
// order.
func Candidates() []string {
	var out []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		out = append(out, p)
	}
	out = append(out, "vpconvert.hcl")
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		out = append(out, filepath.Join(dir, "vpconvert", "vpconvert.hcl"))
	} else if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, ".config", "vpconvert", "vpconvert.hcl"))
	}
	return append(out, "/etc/baltrad/vpconvert.hcl")
}

func findConfig() string {
	for _, p := range Candidates() {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

func (c *Config) readFile(path string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	var raw hclFile
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	setString(&c.LogLevel, raw.LogLevel)
	setString(&c.LogFormat, raw.LogFormat)

	if cv := raw.Convert; cv != nil {
		setString(&c.Quantities, cv.Quantities)
		setString(&c.OutputDir, cv.OutputDir)
		if cv.Compression != nil {
			c.Compression = *cv.Compression
		}
	}

	if sv := raw.Service; sv != nil {
		setString(&c.HTTPAddr, sv.HTTPAddr)
		if sv.ShutdownTimeout != nil {
			d, err := time.ParseDuration(*sv.ShutdownTimeout)
			if err != nil {
				return fmt.Errorf("config file %s: invalid shutdown_timeout: %w", path, err)
			}
			c.ShutdownTimeout = d
		}
		if k := sv.Kafka; k != nil {
			if k.Brokers != nil {
				c.KafkaBrokers = k.Brokers
			}
			setString(&c.KafkaJobsTopic, k.JobsTopic)
			setString(&c.KafkaResultTopic, k.ResultTopic)
			setString(&c.KafkaGroupID, k.GroupID)
		}
	}

	c.Source = path
	return nil
}

func (c *Config) applyEnv() error {
	envString(&c.LogLevel, "LOG_LEVEL")
	envString(&c.LogFormat, "LOG_FORMAT")
	envString(&c.HTTPAddr, "HTTP_ADDR")
	envString(&c.KafkaJobsTopic, "KAFKA_JOBS_TOPIC")
	envString(&c.KafkaResultTopic, "KAFKA_RESULT_TOPIC")
	envString(&c.KafkaGroupID, "KAFKA_GROUP_ID")
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = ParseBrokers(v)
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New("invalid SHUTDOWN_TIMEOUT")
		}
		c.ShutdownTimeout = d
	}
	return nil
}

func (c *Config) validate() error {
	if c.Compression < 0 || c.Compression > 9 {
		return fmt.Errorf("compression must be between 0 and 9, got %d", c.Compression)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// ValidateService checks the settings only the conversion service needs.
func (c *Config) ValidateService() error {
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaJobsTopic == "" {
		return errors.New("KAFKA_JOBS_TOPIC is required")
	}
	if c.KafkaResultTopic == "" {
		return errors.New("KAFKA_RESULT_TOPIC is required")
	}
	return nil
}

// ParseBrokers splits a comma-separated broker list, dropping empty
// entries.
func ParseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
