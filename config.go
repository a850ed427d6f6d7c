package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const configFileName = ".slidedeck.yaml"

// Default is the configuration used before ~/.slidedeck.yaml and the
// environment are applied.
var Default = Config{
	SaveDirectory: "",
	LogLevel:      "info",
	ExportScale:   1,
	Confirmations: true,
}

type Config struct {
	SaveDirectory string  `yaml:"saveDirectory" json:"saveDirectory"`
	APIURL        string  `yaml:"apiURL" json:"apiURL" validate:"omitempty,url"`
	APIToken      string  `yaml:"apiToken" json:"apiToken"`
	LogFile       string  `yaml:"logFile" json:"logFile"`
	LogLevel      string  `yaml:"logLevel" json:"logLevel" validate:"oneof=trace debug info warn warning error fatal panic"`
	ExportScale   float64 `yaml:"exportScale" json:"exportScale" validate:"gt=0,lte=8"`
	Confirmations bool    `yaml:"confirmations" json:"confirmations"`
}

// NewConfigFromReader merges YAML from r over Default and validates it.
func NewConfigFromReader(r io.Reader) (*Config, error) {
	c := Default
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, errors.Wrap(err, "unmarshal config")
		}
	}
	applyEnv(&c)
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadConfig reads path (or ~/.slidedeck.yaml when path is empty). A
// missing file is not an error. A .env file in the working directory is
// loaded first so its variables can override the file.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	home, _ := os.UserHomeDir()
	if path == "" {
		if home == "" {
			return NewConfigFromReader(strings.NewReader(""))
		}
		path = filepath.Join(home, configFileName)
	}
	path = expandHome(path, home)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewConfigFromReader(strings.NewReader(""))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	c, err := NewConfigFromReader(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	c.SaveDirectory = expandHome(c.SaveDirectory, home)
	c.LogFile = expandHome(c.LogFile, home)
	return c, nil
}

func applyEnv(c *Config) {
	if v := os.Getenv("SLIDEDECK_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("SLIDEDECK_API_TOKEN"); v != "" {
		c.APIToken = v
	}
	if v := os.Getenv("SLIDEDECK_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "config validation error")
	}
	return nil
}

func expandHome(p, home string) string {
	if home == "" || !strings.HasPrefix(p, "~") {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// GetSavePath places filename in the save directory, creating it if needed.
// Absolute names are left alone.
func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	_ = os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

// NewLogger writes to the configured log file. The terminal belongs to the
// UI, so with no log file everything is discarded.
func (c *Config) NewLogger() (*logrus.Logger, io.Closer, error) {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, nil, errors.Wrap(err, "log level")
	}
	l.SetLevel(level)
	if c.LogFile == "" {
		l.SetOutput(io.Discard)
		return l, io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0755); err != nil {
		return nil, nil, errors.Wrap(err, "create log directory")
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open log file")
	}
	l.SetOutput(f)
	return l, f, nil
}
