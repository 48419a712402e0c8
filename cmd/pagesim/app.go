package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/xid"

	"github.com/sibexico/pagesim/paging"
	"github.com/sibexico/pagesim/render"
)

// app carries state shared by every command of one invocation
type app struct {
	cfg     *paging.Config
	logger  *slog.Logger
	metrics *paging.Metrics

	// flag values
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
	noColor    bool
	metricsOn  bool
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the structured logger for one invocation, tagged with a run id
func newLogger(cfg *paging.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevels[cfg.LogLevel]}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("run_id", xid.New().String()))
}

// loadConfig resolves defaults, then the config file, then env, then flags
func (a *app) loadConfig(changed func(string) bool) error {
	cfg := paging.DefaultConfig()
	if a.configPath != "" {
		var err error
		cfg, err = paging.LoadConfigFromFile(a.configPath)
		if err != nil {
			return err
		}
	}

	var envFiles []string
	if a.envFile != "" {
		envFiles = append(envFiles, a.envFile)
	}
	cfg, err := paging.LoadConfigFromEnv(cfg, envFiles...)
	if err != nil {
		return err
	}

	if changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if changed("no-color") {
		cfg.Color = !a.noColor
	}
	if changed("metrics") {
		cfg.EnableMetrics = a.metricsOn
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	return nil
}

// renderOptions enables colour only for an interactive stdout
func (a *app) renderOptions(w io.Writer) render.Options {
	opts := render.Options{}
	if f, ok := w.(*os.File); ok && f == os.Stdout {
		opts.Color = a.cfg.Color && !color.NoColor
	}
	return opts
}

// readReferences takes the reference string from a file or from the arguments
func (a *app) readReferences(args []string, inputPath string) ([]paging.PageID, error) {
	raw := strings.Join(args, " ")
	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read reference file: %w", err)
		}
		raw = string(data)
	}

	refs, err := paging.ParseReferenceString(raw)
	if err != nil {
		return nil, err
	}
	if a.cfg.MaxReferences > 0 && len(refs) > a.cfg.MaxReferences {
		return nil, paging.NewSimError(paging.ErrCodeInvalidReference, "readReferences",
			fmt.Sprintf("%d references exceed the limit of %d", len(refs), a.cfg.MaxReferences), nil)
	}
	return refs, nil
}

// frames returns the flag value when set, otherwise the configured default
func (a *app) frames(flagValue int, changed bool) (int, error) {
	n := a.cfg.Frames
	if changed {
		n = flagValue
	}
	if err := paging.ValidateCapacity(n); err != nil {
		return 0, err
	}
	return n, nil
}

// simulate runs one policy through run
func (a *app) simulate(policy paging.Policy, refs []paging.PageID, capacity int) (*paging.Trace, error) {
	sim, err := paging.NewSimulator(policy)
	if err != nil {
		return nil, err
	}
	return a.run(sim, refs, capacity)
}

// run records metrics for one simulation and logs each step at debug level
func (a *app) run(sim paging.Simulator, refs []paging.PageID, capacity int) (*paging.Trace, error) {
	trace, err := a.metrics.Timed(sim, refs, capacity)
	if err != nil {
		return nil, err
	}

	policy := sim.Policy()
	a.logger.Info("simulation finished",
		slog.String("policy", string(policy)),
		slog.Int("frames", capacity),
		slog.Int("references", trace.Len()),
		slog.Int("faults", trace.Faults),
	)
	if a.logger.Enabled(context.Background(), slog.LevelDebug) {
		for i, s := range trace.Steps {
			a.logger.Debug("reference",
				slog.String("policy", string(policy)),
				slog.Int("position", i),
				slog.Int("page", int(s.Reference)),
				slog.Bool("fault", s.Fault),
				slog.String("frames", formatFrames(s.Frames)),
				slog.String("evicted", s.Evicted.String()),
			)
		}
	}
	return trace, nil
}

func formatFrames(frames []paging.Slot) string {
	parts := make([]string, len(frames))
	for i, f := range frames {
		parts[i] = f.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
