package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sibexico/pagesim/paging"
	"github.com/sibexico/pagesim/render"
)

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "pagesim",
		Short:         "Simulate FIFO, LRU and OPT page replacement",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(cmd.Flags().Changed); err != nil {
				return err
			}
			a.logger = newLogger(a.cfg, cmd.ErrOrStderr())
			a.metrics = paging.NewMetrics(a.cfg.HistogramSize)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.cfg.EnableMetrics {
				a.metrics.LogMetrics(a.logger)
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "JSON config file")
	pf.StringVar(&a.envFile, "env-file", ".env", "env file with PAGESIM_* variables")
	pf.StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&a.logFormat, "log-format", "text", "log format (text, json)")
	pf.BoolVar(&a.noColor, "no-color", false, "disable coloured tables")
	pf.BoolVar(&a.metricsOn, "metrics", false, "log simulation metrics on exit")

	root.AddCommand(
		newRunCmd(a),
		newCompareCmd(a),
		newSweepCmd(a),
		newExportCmd(a),
		newShowCmd(a),
	)
	return root
}

func newRunCmd(a *app) *cobra.Command {
	var (
		policyName string
		frames     int
		input      string
	)

	cmd := &cobra.Command{
		Use:   "run [references...]",
		Short: "Run one policy and print the frame table",
		Example: `  pagesim run -p lru -f 3 "0 1 2 0 1 3 0 1 2 3"
  pagesim run -p opt -f 4 7 0 1 2 0 3 0 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := paging.ParsePolicy(policyName)
			if err != nil {
				return err
			}
			capacity, err := a.frames(frames, cmd.Flags().Changed("frames"))
			if err != nil {
				return err
			}
			refs, err := a.readReferences(args, input)
			if err != nil {
				return err
			}

			trace, err := a.simulate(policy, refs, capacity)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := render.Summary(out, trace); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return render.Table(out, trace, a.renderOptions(out))
		},
	}

	cmd.Flags().StringVarP(&policyName, "policy", "p", "fifo", "replacement policy (fifo, lru, opt)")
	cmd.Flags().IntVarP(&frames, "frames", "f", 0, "number of frames (default from config)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "read references from a file")
	return cmd
}

func newCompareCmd(a *app) *cobra.Command {
	var (
		policyNames []string
		frames      int
		input       string
		tables      bool
	)

	cmd := &cobra.Command{
		Use:   "compare [references...]",
		Short: "Run several policies on the same input and compare fault counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("policies") {
				a.cfg.Policies = policyNames
			}
			policies, err := a.cfg.PolicyList()
			if err != nil {
				return err
			}
			capacity, err := a.frames(frames, cmd.Flags().Changed("frames"))
			if err != nil {
				return err
			}
			refs, err := a.readReferences(args, input)
			if err != nil {
				return err
			}

			cmp, err := paging.CompareWith(a.run, refs, capacity, policies...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			opts := a.renderOptions(out)
			if tables {
				for _, t := range cmp.Traces {
					fmt.Fprintf(out, "Algorithm: %s\n", t.Policy)
					if err := render.Table(out, t, opts); err != nil {
						return err
					}
					fmt.Fprintln(out)
				}
			}
			return render.Comparison(out, cmp, opts)
		},
	}

	cmd.Flags().StringSliceVar(&policyNames, "policies", nil, "policies to compare (default from config)")
	cmd.Flags().IntVarP(&frames, "frames", "f", 0, "number of frames (default from config)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "read references from a file")
	cmd.Flags().BoolVar(&tables, "tables", false, "also print each policy's frame table")
	return cmd
}

func newSweepCmd(a *app) *cobra.Command {
	var (
		policyName string
		minFrames  int
		maxFrames  int
		input      string
	)

	cmd := &cobra.Command{
		Use:   "sweep [references...]",
		Short: "Report fault counts over a range of frame counts and flag Belady's anomaly",
		Example: `  pagesim sweep -p fifo --min 1 --max 5 "1 2 3 4 1 2 5 1 2 3 4 5"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := paging.ParsePolicy(policyName)
			if err != nil {
				return err
			}
			refs, err := a.readReferences(args, input)
			if err != nil {
				return err
			}

			points, err := paging.Sweep(policy, refs, minFrames, maxFrames)
			if err != nil {
				return err
			}
			if n := len(paging.BeladyAnomalies(points)); n > 0 {
				a.logger.Warn("Belady's anomaly detected", "policy", string(policy), "count", n)
			}

			out := cmd.OutOrStdout()
			return render.Sweep(out, policy, points, a.renderOptions(out))
		},
	}

	cmd.Flags().StringVarP(&policyName, "policy", "p", "fifo", "replacement policy (fifo, lru, opt)")
	cmd.Flags().IntVar(&minFrames, "min", 1, "smallest frame count")
	cmd.Flags().IntVar(&maxFrames, "max", 8, "largest frame count")
	cmd.Flags().StringVarP(&input, "input", "i", "", "read references from a file")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		policyName  string
		frames      int
		input       string
		output      string
		compression string
	)

	cmd := &cobra.Command{
		Use:   "export [references...]",
		Short: "Write a compressed trace archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := paging.ParsePolicy(policyName)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("compression") {
				a.cfg.Compression = compression
			}
			ct, err := paging.ParseCompression(a.cfg.Compression)
			if err != nil {
				return err
			}
			capacity, err := a.frames(frames, cmd.Flags().Changed("frames"))
			if err != nil {
				return err
			}
			refs, err := a.readReferences(args, input)
			if err != nil {
				return err
			}

			trace, err := a.simulate(policy, refs, capacity)
			if err != nil {
				return err
			}
			archive, err := paging.CompressTrace(trace, ct)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, archive, 0644); err != nil {
				return fmt.Errorf("failed to write archive: %w", err)
			}

			info, err := paging.ReadArchiveInfo(archive)
			if err != nil {
				return err
			}
			a.logger.Info("trace exported",
				"path", output,
				"compression", info.Compression.String(),
				"encoded_bytes", info.EncodedSize,
				"stored_bytes", len(archive),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d bytes, %.2fx)\n",
				output, info.Compression, len(archive), info.Ratio())
			return nil
		},
	}

	cmd.Flags().StringVarP(&policyName, "policy", "p", "fifo", "replacement policy (fifo, lru, opt)")
	cmd.Flags().IntVarP(&frames, "frames", "f", 0, "number of frames (default from config)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "read references from a file")
	cmd.Flags().StringVarP(&output, "output", "o", "trace.bin", "archive path")
	cmd.Flags().StringVar(&compression, "compression", "", "none, lz4, snappy or best (default from config)")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <archive>",
		Short: "Print a trace archive written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read archive: %w", err)
			}
			trace, err := paging.DecompressTrace(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := render.Summary(out, trace); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return render.Table(out, trace, a.renderOptions(out))
		},
	}
}
