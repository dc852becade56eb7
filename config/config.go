package config

import (
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr        string
	DBUrl       string
	Debug       bool
	Seed        bool
	CORSOrigins []string
	Simulate    Simulation
}

// Simulation reproduces a slow and flaky backend. The zero value disables it.
type Simulation struct {
	LatencyMin  time.Duration `yaml:"latency_min"`
	LatencyMax  time.Duration `yaml:"latency_max"`
	FailureRate float64       `yaml:"failure_rate"`
}

func (s Simulation) Enabled() bool {
	return s.LatencyMax > 0 || s.FailureRate > 0
}

// fileConfig mirrors the optional YAML configuration file.
type fileConfig struct {
	Host        *string     `yaml:"host"`
	Port        *uint       `yaml:"port"`
	DBUrl       *string     `yaml:"db_url"`
	Debug       *bool       `yaml:"debug"`
	Seed        *bool       `yaml:"seed"`
	CORSOrigins []string    `yaml:"cors_origins"`
	Simulate    *Simulation `yaml:"simulate"`
}

func ParseFlags() (Config, error) {
	return Parse(os.Args[0], os.Args[1:])
}

// Parse reads command line flags. Values from the -config file are used
// for every flag that is not given explicitly.
func Parse(name string, args []string) (cfg Config, err error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "path to a YAML configuration file")
	host := fs.String("host", "0.0.0.0", "listen host name")
	port := fs.Uint("port", 8080, "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", "talentflow.sqlite", "path to SQLite3 DB file")
	fs.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")
	fs.BoolVar(&cfg.Seed, "seed", true, "populate an empty database with generated data")
	origins := fs.String("cors-origins", "http://localhost:5173,http://localhost:3000", "comma separated list of allowed CORS origins")
	fs.DurationVar(&cfg.Simulate.LatencyMin, "latency-min", 0, "minimum simulated request latency")
	fs.DurationVar(&cfg.Simulate.LatencyMax, "latency-max", 0, "maximum simulated request latency")
	fs.Float64Var(&cfg.Simulate.FailureRate, "failure-rate", 0, "probability in [0,1] of a simulated server error on writes")

	if err = fs.Parse(args); err != nil {
		return
	}
	cfg.CORSOrigins = splitCSV(*origins)

	if configPath != "" {
		var file fileConfig
		file, err = loadFile(configPath)
		if err != nil {
			return
		}
		explicit := map[string]bool{}
		fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		file.applyTo(&cfg, host, port, explicit)
	}

	cfg.Addr = net.JoinHostPort(*host, strconv.Itoa(int(*port)))
	err = cfg.validate()
	return
}

func loadFile(path string) (fileConfig, error) {
	var file fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return file, errors.Wrapf(err, "read config %s", path)
	}
	if err = yaml.Unmarshal(data, &file); err != nil {
		return file, errors.Wrapf(err, "parse config %s", path)
	}
	return file, nil
}

func (file fileConfig) applyTo(cfg *Config, host *string, port *uint, explicit map[string]bool) {
	if file.Host != nil && !explicit["host"] {
		*host = *file.Host
	}
	if file.Port != nil && !explicit["port"] {
		*port = *file.Port
	}
	if file.DBUrl != nil && !explicit["db-url"] {
		cfg.DBUrl = *file.DBUrl
	}
	if file.Debug != nil && !explicit["debug"] {
		cfg.Debug = *file.Debug
	}
	if file.Seed != nil && !explicit["seed"] {
		cfg.Seed = *file.Seed
	}
	if file.CORSOrigins != nil && !explicit["cors-origins"] {
		cfg.CORSOrigins = file.CORSOrigins
	}
	if sim := file.Simulate; sim != nil {
		if !explicit["latency-min"] {
			cfg.Simulate.LatencyMin = sim.LatencyMin
		}
		if !explicit["latency-max"] {
			cfg.Simulate.LatencyMax = sim.LatencyMax
		}
		if !explicit["failure-rate"] {
			cfg.Simulate.FailureRate = sim.FailureRate
		}
	}
}

func (cfg Config) validate() error {
	sim := cfg.Simulate
	if sim.LatencyMin < 0 || sim.LatencyMax < sim.LatencyMin {
		return errors.Errorf("invalid latency range [%s, %s]", sim.LatencyMin, sim.LatencyMax)
	}
	if sim.FailureRate < 0 || sim.FailureRate > 1 {
		return errors.Errorf("failure rate %v out of [0,1]", sim.FailureRate)
	}
	if cfg.DBUrl == "" {
		return errors.New("missing parameter -db-url")
	}
	return nil
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
