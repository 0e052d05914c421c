package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/procsim/examples"
	"github.com/sarchlab/procsim/simulation"
)

// Environment variables read from the process environment or the .env file.
const (
	envLogLevel    = "PROCSIM_LOG_LEVEL"
	envMonitorPort = "PROCSIM_MONITOR_PORT"
	envOutput      = "PROCSIM_OUTPUT"
)

// Config is everything a run needs. It is assembled from the defaults, the
// environment, a YAML file and the command line flags, each overriding the
// previous one.
type Config struct {
	Scenario    string  `yaml:"scenario"`
	Seed        uint64  `yaml:"seed"`
	Horizon     float64 `yaml:"horizon"`
	Start       string  `yaml:"start"` // RFC 3339
	Trace       bool    `yaml:"trace"`
	Output      string  `yaml:"output"`
	Monitor     bool    `yaml:"monitor"`
	MonitorPort int     `yaml:"monitor_port"`
	OpenMonitor bool    `yaml:"open_monitor"`
	LogLevel    string  `yaml:"log_level"`
	LogTasks    bool    `yaml:"log_tasks"`
}

func defaultConfig() Config {
	return Config{
		Trace:    true,
		LogLevel: "info",
	}
}

type lookupFunc func(key string) (string, bool)

// envLookup returns a lookup that prefers the process environment over the
// values of the given .env file. A missing file is not an error.
func envLookup(envFile string) (lookupFunc, error) {
	fileEnv := map[string]string{}

	if envFile != "" {
		read, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileEnv = read
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}

		v, ok := fileEnv[key]

		return v, ok
	}, nil
}

func (c *Config) applyEnv(lookup lookupFunc) error {
	if v, ok := lookup(envLogLevel); ok && v != "" {
		c.LogLevel = v
	}

	if v, ok := lookup(envMonitorPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envMonitorPort, err)
		}

		c.MonitorPort = port
	}

	if v, ok := lookup(envOutput); ok && v != "" {
		c.Output = v
	}

	return nil
}

// applyFile overlays the fields present in the YAML file at path.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	return nil
}

// applyFlags overlays the flags explicitly set on cmd.
func (c *Config) applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	if flags.Changed("log-level") {
		c.LogLevel, _ = flags.GetString("log-level")
	}

	if flags.Changed("seed") {
		c.Seed, _ = flags.GetUint64("seed")
	}

	if flags.Changed("horizon") {
		c.Horizon, _ = flags.GetFloat64("horizon")
	}

	if flags.Changed("start") {
		c.Start, _ = flags.GetString("start")
	}

	if flags.Changed("no-trace") {
		noTrace, _ := flags.GetBool("no-trace")
		c.Trace = !noTrace
	}

	if flags.Changed("output") {
		c.Output, _ = flags.GetString("output")
	}

	if flags.Changed("monitor") {
		c.Monitor, _ = flags.GetBool("monitor")
	}

	if flags.Changed("monitor-port") {
		c.MonitorPort, _ = flags.GetInt("monitor-port")
	}

	if flags.Changed("open-monitor") {
		c.OpenMonitor, _ = flags.GetBool("open-monitor")
	}

	if flags.Changed("log-tasks") {
		c.LogTasks, _ = flags.GetBool("log-tasks")
	}
}

// resolveConfig builds the configuration of the command, honoring the
// environment, the --config file and the flags.
func resolveConfig(cmd *cobra.Command) (Config, error) {
	cfg := defaultConfig()

	envFile, _ := cmd.Flags().GetString("env-file")

	lookup, err := envLookup(envFile)
	if err != nil {
		return cfg, err
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.applyFlags(cmd)

	return cfg, nil
}

func (c Config) params() (examples.Params, error) {
	p := examples.Params{
		Seed:    c.Seed,
		Horizon: c.Horizon,
	}

	if c.Start != "" {
		start, err := time.Parse(time.RFC3339, c.Start)
		if err != nil {
			return p, fmt.Errorf("invalid start time: %w", err)
		}

		p.Start = start
	}

	return p, nil
}

func (c Config) builder(cmd *cobra.Command) simulation.Builder {
	b := simulation.MakeBuilder()

	if c.Trace {
		b = b.WithTraceWriter(cmd.OutOrStdout())
	} else {
		b = b.WithoutTrace()
	}

	if c.Output != "" {
		b = b.WithOutputFileName(c.Output)
	}

	if c.Monitor {
		b = b.WithMonitoring()
		if c.MonitorPort > 0 {
			b = b.WithMonitorPort(c.MonitorPort)
		}
	}

	if c.LogTasks {
		b = b.WithTaskLogging(logrus.StandardLogger())
	}

	return b
}

func (c Config) setLogLevel() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}

	logrus.SetLevel(level)

	return nil
}
