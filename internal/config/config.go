package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"slidegate/internal/ratelimit"
)

type Server struct {
	Addr string `yaml:"addr"`
}

type Observability struct {
	LogLevel       string `yaml:"log_level"`       // "debug","info","warn","error"
	PrometheusPath string `yaml:"prometheus_path"` // e.g. "/metrics"
}

// Limit is the gate's configuration surface: count admissions per one unit.
type Limit struct {
	Unit  string `yaml:"unit"` // "millisecond","second","minute","hour"
	Count int    `yaml:"count"`
}

// Workload drives the built-in soak traffic in cmd/slidegate.
type Workload struct {
	Workers      int     `yaml:"workers"`
	ArrivalRPS   float64 `yaml:"arrival_rps"`
	OpDurationMS int     `yaml:"op_duration_ms"`
}

type Root struct {
	Server        Server        `yaml:"server"`
	Observability Observability `yaml:"observability"`
	Limit         Limit         `yaml:"limit"`
	Workload      Workload      `yaml:"workload"`
}

// ParsedUnit returns the window unit the gate constructor expects.
func (l Limit) ParsedUnit() (ratelimit.Unit, error) {
	return ratelimit.ParseUnit(l.Unit)
}

func (w Workload) OpDuration() time.Duration {
	if w.OpDurationMS <= 0 {
		return 10 * time.Millisecond
	}
	return time.Duration(w.OpDurationMS) * time.Millisecond
}

func Load(path string) (*Root, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Root
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
	if cfg.Observability.PrometheusPath == "" {
		cfg.Observability.PrometheusPath = "/metrics"
	}
	if cfg.Limit.Unit == "" {
		cfg.Limit.Unit = string(ratelimit.Minute)
	}
	if cfg.Limit.Count == 0 {
		cfg.Limit.Count = 60
	}
	if cfg.Workload.Workers <= 0 {
		cfg.Workload.Workers = 8
	}
	if cfg.Workload.ArrivalRPS <= 0 {
		cfg.Workload.ArrivalRPS = 20
	}

	// Fail here rather than at gate construction so a bad limit section is
	// reported alongside the rest of the config errors.
	if _, err := cfg.Limit.ParsedUnit(); err != nil {
		return nil, err
	}
	if cfg.Limit.Count < 0 {
		return nil, fmt.Errorf("limit.count must be positive, got %d", cfg.Limit.Count)
	}

	return &cfg, nil
}
