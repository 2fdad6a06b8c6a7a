package twincore

import (
	"fmt"
	"sync"
	"time"
)

// Config holds the knobs a twin starts with. Latency, FailRate and Verbose
// can later be changed through Settings.Update.
type Config struct {
	Name     string
	Port     int
	Latency  time.Duration
	FailRate float64
	Verbose  bool
}

// Settings is the live, lock-guarded copy of a Config read by the middleware
// on every request.
type Settings struct {
	mu  sync.RWMutex
	cur Config
}

func NewSettings(cfg Config) *Settings {
	return &Settings{cur: cfg}
}

// Current returns a copy of the live config.
func (s *Settings) Current() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Map renders the live config the way GET /admin/config reports it.
func (s *Settings) Map() map[string]any {
	c := s.Current()
	return map[string]any{
		"name":      c.Name,
		"port":      c.Port,
		"latency":   c.Latency.String(),
		"fail_rate": c.FailRate,
		"verbose":   c.Verbose,
	}
}

type setter func(*Config)

func parseLatency(v any) (setter, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("latency must be a duration string")
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, fmt.Errorf("invalid latency duration: %w", err)
	}
	if d < 0 {
		return nil, fmt.Errorf("latency must not be negative")
	}
	return func(c *Config) { c.Latency = d }, nil
}

func parseFailRate(v any) (setter, error) {
	f, ok := v.(float64)
	if !ok {
		return nil, fmt.Errorf("fail_rate must be a number")
	}
	if f < 0 || f > 1 {
		return nil, fmt.Errorf("fail_rate must be between 0.0 and 1.0")
	}
	return func(c *Config) { c.FailRate = f }, nil
}

func parseVerbose(v any) (setter, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("verbose must be a boolean")
	}
	return func(c *Config) { c.Verbose = b }, nil
}

var mutable = map[string]func(any) (setter, error){
	"latency":   parseLatency,
	"fail_rate": parseFailRate,
	"verbose":   parseVerbose,
}

// Update applies a partial config decoded from JSON. Either every key is
// valid and all are applied, or nothing changes.
func (s *Settings) Update(updates map[string]any) error {
	setters := make([]setter, 0, len(updates))
	for key, v := range updates {
		parse, ok := mutable[key]
		switch {
		case ok:
		case key == "name" || key == "port":
			return fmt.Errorf("%s cannot be changed at runtime", key)
		default:
			return fmt.Errorf("unknown config key: %s", key)
		}
		set, err := parse(v)
		if err != nil {
			return err
		}
		setters = append(setters, set)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, set := range setters {
		set(&s.cur)
	}
	return nil
}
