package config

import (
	"encoding/json"
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/vango-dev/faultline/internal/errors"
	"github.com/vango-dev/faultline/pkg/host"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "faultline.json"

	// DefaultDevtoolsAddr is the default devtools listen address.
	DefaultDevtoolsAddr = "localhost:7070"

	// DefaultOverlayPath is the default websocket path of the error overlay.
	DefaultOverlayPath = "/_faultline/overlay"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "faultline"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "faultline"

	// DefaultFlushInterval is the default archive flush interval.
	DefaultFlushInterval = "30s"

	// DefaultMaxBatch is the default number of reports per archive object.
	DefaultMaxBatch = 100
)

// Config is the faultline.json schema.
type Config struct {
	// Production disables development warnings.
	Production bool `json:"production"`

	Host     HostConfig     `json:"host"`
	Devtools DevtoolsConfig `json:"devtools"`
	Metrics  MetricsConfig  `json:"metrics"`
	Tracing  TracingConfig  `json:"tracing"`
	Archive  ArchiveConfig  `json:"archive"`

	configPath string
}

// HostConfig overrides host detection.
type HostConfig struct {
	Browser  bool `json:"browser,omitempty"`
	Embedded bool `json:"embedded,omitempty"`

	// Headless forces a host with no diagnostic channel.
	Headless bool `json:"headless,omitempty"`
}

// DevtoolsConfig configures the devtools HTTP server.
type DevtoolsConfig struct {
	// Enabled starts the server alongside the runtime.
	Enabled bool `json:"enabled,omitempty"`

	// Addr is the listen address (host:port).
	Addr string `json:"addr,omitempty"`

	// OverlayPath is the websocket path of the error overlay.
	OverlayPath string `json:"overlayPath,omitempty"`
}

// MetricsConfig names the Prometheus metrics.
type MetricsConfig struct {
	Namespace string `json:"namespace,omitempty"`
	Subsystem string `json:"subsystem,omitempty"`
}

// TracingConfig configures OpenTelemetry.
type TracingConfig struct {
	TracerName string `json:"tracerName,omitempty"`
}

// ArchiveConfig configures the S3 report archive. The archive is disabled
// while Bucket is empty.
type ArchiveConfig struct {
	Bucket   string `json:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`

	// FlushInterval is a Go duration string (e.g. "30s").
	FlushInterval string `json:"flushInterval,omitempty"`

	MaxBatch int `json:"maxBatch,omitempty"`
}

// Enabled reports whether a bucket is configured.
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// FlushDuration parses FlushInterval, falling back to the default.
func (a ArchiveConfig) FlushDuration() time.Duration {
	d, err := time.ParseDuration(a.FlushInterval)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultFlushInterval)
	}
	return d
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads faultline.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("F100").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Run 'faultline config init' to create one")
		}
		return nil, errors.New("F101").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		fe := errors.New("F101").Wrap(err)
		if offset, ok := jsonOffset(err); ok {
			line, col := position(data, offset)
			fe = fe.WithLocation(path, line, col)
		}
		return nil, fe.WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

func jsonOffset(err error) (int64, bool) {
	var syntax *json.SyntaxError
	if stderrors.As(err, &syntax) {
		return syntax.Offset, true
	}
	var typ *json.UnmarshalTypeError
	if stderrors.As(err, &typ) {
		return typ.Offset, true
	}
	return 0, false
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Newf(errors.CategoryConfig, "encode config").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Newf(errors.CategoryConfig, "write %s", path).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

func (c *Config) applyDefaults() {
	if c.Devtools.Addr == "" {
		c.Devtools.Addr = DefaultDevtoolsAddr
	}
	if c.Devtools.OverlayPath == "" {
		c.Devtools.OverlayPath = DefaultOverlayPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.Archive.FlushInterval == "" {
		c.Archive.FlushInterval = DefaultFlushInterval
	}
	if c.Archive.MaxBatch == 0 {
		c.Archive.MaxBatch = DefaultMaxBatch
	}
}

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Host.Browser && c.Host.Embedded {
		return errors.New("F105")
	}
	if c.Host.Headless && (c.Host.Browser || c.Host.Embedded) {
		return errors.New("F105").WithDetail("host.headless cannot be combined with host.browser or host.embedded.")
	}
	if _, port, err := net.SplitHostPort(c.Devtools.Addr); err != nil || port == "" {
		fe := errors.New("F102").WithDetail("devtools.addr " + quote(c.Devtools.Addr) + " is not a host:port pair")
		if err != nil {
			fe = fe.Wrap(err)
		}
		return fe
	}
	if !strings.HasPrefix(c.Devtools.OverlayPath, "/") {
		return errors.New("F103").WithSuggestion("Use " + quote(DefaultOverlayPath))
	}
	for _, name := range []string{c.Metrics.Namespace, c.Metrics.Subsystem} {
		if name != "" && !metricName.MatchString(name) {
			return errors.New("F106").WithDetail(quote(name) + " is not a valid metric name component")
		}
	}
	if c.Archive.Enabled() {
		if d, err := time.ParseDuration(c.Archive.FlushInterval); err != nil || d <= 0 {
			return errors.New("F104").WithDetail("archive.flushInterval " + quote(c.Archive.FlushInterval) + " is not a positive duration")
		}
		if c.Archive.MaxBatch <= 0 {
			return errors.New("F104").WithDetail("archive.maxBatch must be positive")
		}
	}
	return nil
}

// Probe returns the configured host, or the detected one when no host flag
// is set.
func (c *Config) Probe() host.Env {
	if c.Host.Headless {
		return host.Headless
	}
	if c.Host.Browser || c.Host.Embedded {
		return host.Env{InBrowser: c.Host.Browser, InEmbedded: c.Host.Embedded}
	}
	return host.Detect()
}

// Exists reports whether dir contains a config file.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindRoot walks up from startDir to the first directory containing
// faultline.json.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("F100").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir finds and loads the nearest faultline.json.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindRoot(wd)
	if err != nil {
		return nil, err
	}
	return Load(root)
}

func quote(s string) string {
	return `"` + s + `"`
}
