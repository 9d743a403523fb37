// Package config collects the options of the bookmark service from defaults,
// an optional JSON file, command-line flags and environment variables, in
// increasing order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultConfigPath   = "config.json"
	defaultAllowedChars = `^[a-z0-9]+$`
)

// ErrNoSecret is returned when no JWT secret was configured.
var ErrNoSecret = errors.New("config: JWT secret is required")

// Duration is a time.Duration read from JSON as a string such as "24h".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// stringList is a comma separated flag value.
type stringList []string

func (l *stringList) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = splitList(v)
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Options holds the configuration values for the application.
type Options struct {
	// Address is the HTTP listening address (ip:port).
	Address string `json:"server_address"`

	// GRPCAddress enables the gRPC transport when set.
	GRPCAddress string `json:"grpc_address"`

	// DatabaseDSN selects the PostgreSQL store.
	DatabaseDSN string `json:"database_dsn"`

	// FilePath selects the file store when no DSN is set.
	FilePath string `json:"file_storage_path"`

	// JWTSecretKey signs and verifies bearer tokens.
	JWTSecretKey string `json:"jwt_secret"`

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL Duration `json:"token_ttl"`

	// AllowedChars is the pattern bookmark titles must match on create.
	AllowedChars string `json:"allowed_chars"`

	// Users are created at start if missing.
	Users []string `json:"users"`

	// LogLevel is a zap level name.
	LogLevel string `json:"log_level"`

	// EnablePprof indicates whether to enable pprof for performance profiling.
	EnablePprof bool `json:"enable_pprof"`

	// EnableHTTPS serves TLS with certificates from Let's Encrypt.
	EnableHTTPS bool `json:"enable_https"`

	// TLSHosts are the host names autocert may request certificates for.
	TLSHosts []string `json:"tls_hosts"`

	// Config is the path of the JSON config file.
	Config string `json:"-"`

	// IssueToken, when set, makes the binary print a token for this user and exit.
	IssueToken string `json:"-"`

	allowed *regexp.Regexp
}

// Allowed returns the compiled AllowedChars pattern.
func (o *Options) Allowed() *regexp.Regexp {
	return o.allowed
}

func defaults() *Options {
	return &Options{
		Address:      "localhost:8080",
		TokenTTL:     Duration{24 * time.Hour},
		AllowedChars: defaultAllowedChars,
		LogLevel:     "info",
		Config:       defaultConfigPath,
	}
}

func newFlagSet(o *Options) *flag.FlagSet {
	fs := flag.NewFlagSet("bookmarks", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&o.Address, "a", o.Address, "run on ip:port server")
	fs.StringVar(&o.GRPCAddress, "g", o.GRPCAddress, "gRPC ip:port, disabled when empty")
	fs.StringVar(&o.DatabaseDSN, "d", o.DatabaseDSN, "db address")
	fs.StringVar(&o.FilePath, "f", o.FilePath, "path to storage file")
	fs.StringVar(&o.JWTSecretKey, "j", o.JWTSecretKey, "JWT secret")
	fs.DurationVar(&o.TokenTTL.Duration, "t", o.TokenTTL.Duration, "issued token lifetime")
	fs.StringVar(&o.AllowedChars, "r", o.AllowedChars, "pattern for bookmark titles")
	fs.Var((*stringList)(&o.Users), "u", "comma separated users to create")
	fs.StringVar(&o.LogLevel, "l", o.LogLevel, "log level")
	fs.BoolVar(&o.EnablePprof, "p", o.EnablePprof, "enable pprof")
	fs.BoolVar(&o.EnableHTTPS, "s", o.EnableHTTPS, "enable https")
	fs.Var((*stringList)(&o.TLSHosts), "hosts", "comma separated hosts for TLS certificates")
	fs.StringVar(&o.Config, "c", o.Config, "path to JSON config")
	fs.StringVar(&o.Config, "config", o.Config, "path to JSON config")
	fs.StringVar(&o.IssueToken, "issue-token", "", "print a token for the given user and exit")

	return fs
}

// Parse reads the options from os.Args and the environment.
func Parse() (*Options, error) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs reads the options from args and the environment.
// A missing file at the default config path is ignored.
func ParseArgs(args []string) (*Options, error) {
	// First pass only locates the config file.
	probe := defaults()
	if err := newFlagSet(probe).Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	path := probe.Config
	if v, ok := os.LookupEnv("CONFIG"); ok && v != "" {
		path = v
	}

	options := defaults()
	if err := loadFile(options, path, path != defaultConfigPath); err != nil {
		return nil, err
	}

	if err := newFlagSet(options).Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	options.Config = path

	if err := applyEnv(options); err != nil {
		return nil, err
	}

	if options.JWTSecretKey == "" {
		return nil, ErrNoSecret
	}

	re, err := regexp.Compile(options.AllowedChars)
	if err != nil {
		return nil, fmt.Errorf("config: allowed chars: %w", err)
	}
	options.allowed = re

	return options, nil
}

func loadFile(o *Options, path string, required bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := json.Unmarshal(content, o); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(o *Options) error {
	strs := map[string]*string{
		"SERVER_ADDRESS":    &o.Address,
		"GRPC_ADDRESS":      &o.GRPCAddress,
		"DATABASE_DSN":      &o.DatabaseDSN,
		"FILE_STORAGE_PATH": &o.FilePath,
		"JWT_SECRET":        &o.JWTSecretKey,
		"ALLOWED_CHARS":     &o.AllowedChars,
		"LOG_LEVEL":         &o.LogLevel,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"ENABLE_PPROF": &o.EnablePprof,
		"ENABLE_HTTPS": &o.EnableHTTPS,
	}
	for name, dst := range bools {
		if v := os.Getenv(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("config: %s: %w", name, err)
			}
			*dst = b
		}
	}

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: TOKEN_TTL: %w", err)
		}
		o.TokenTTL.Duration = d
	}

	if v := os.Getenv("USERS"); v != "" {
		o.Users = splitList(v)
	}
	if v := os.Getenv("TLS_HOSTS"); v != "" {
		o.TLSHosts = splitList(v)
	}

	return nil
}
