package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/procsim/examples"
	"github.com/sarchlab/procsim/simulation"
)

// newRootCmd represents the base command when called without any subcommands
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "procsim",
		Short: "procsim runs process-oriented discrete-event models.",
		Long: `procsim runs the example models of the process simulator. ` +
			`Each model is a scenario that can be listed and run by name.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("log-level", "info",
		"Log verbosity (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("env-file", ".env",
		"File to read PROCSIM_* variables from")

	rootCmd.AddCommand(newListCmd(), newRunCmd(), newRecordsCmd())

	return rootCmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the scenarios that can be run.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			for _, sc := range examples.Scenarios() {
				clock := "numeric"
				if sc.Calendar {
					clock = "calendar"
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					sc.Name, sc.Kernel(), clock, sc.Description)
			}

			return w.Flush()
		},
	}
}

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "Run a scenario.",
		Long: "`run [scenario]` runs a scenario and prints its trace. The " +
			"scenario can also be named in the file given with --config.",
		Args: cobra.MaximumNArgs(1),
		RunE: runScenario,
	}

	flags := runCmd.Flags()
	flags.String("config", "", "YAML file with the run configuration")
	flags.Uint64("seed", 0, "Seed of the random generators")
	flags.Float64("horizon", 0,
		"Run length, in minutes for calendar scenarios (0 keeps the default)")
	flags.String("start", "", "Start time of calendar scenarios (RFC 3339)")
	flags.Bool("no-trace", false, "Do not print the trace table")
	flags.String("output", "", "Export the trace to this SQLite file")
	flags.Bool("monitor", false, "Serve the monitor while running")
	flags.Int("monitor-port", 0, "Port of the monitor")
	flags.Bool("open-monitor", false, "Open the monitor in a browser")
	flags.Bool("log-tasks", false, "Log task life cycle events")

	return runCmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		cfg.Scenario = args[0]
	}

	if cfg.Scenario == "" {
		return errors.New("no scenario given")
	}

	if err := cfg.setLogLevel(); err != nil {
		return err
	}

	p, err := cfg.params()
	if err != nil {
		return err
	}

	s, err := examples.Run(cfg.Scenario, cfg.builder(cmd), p)
	if s == nil {
		return err
	}

	if err == nil {
		sc, _ := examples.Lookup(cfg.Scenario)
		printSummary(cmd, sc, s)

		if cfg.Monitor {
			waitOnMonitor(cmd, cfg, s)
		}
	}

	s.GetSimulator().Reset()

	return errors.Join(err, s.Terminate())
}

func printSummary(
	cmd *cobra.Command,
	sc examples.Scenario,
	s *simulation.Simulation,
) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "\nscenario %s stopped at %s with %d records",
		sc.Name, sc.Now(s), s.GetRecorder().Len())

	if sc.Events {
		engine := s.GetEngine()
		fmt.Fprintf(out, ", %d events triggered, %d pending\n",
			engine.Fired(), engine.Pending())

		return
	}

	timer := s.GetTaskTimer()
	fmt.Fprintf(out, ", %d tasks unfinished\n", len(s.GetSimulator().Tasks()))
	fmt.Fprintf(out, "%d tasks ended, average lifetime %g\n",
		timer.TotalCount(), timer.AverageTime())
}

// waitOnMonitor keeps the monitor up until the command is interrupted.
func waitOnMonitor(cmd *cobra.Command, cfg Config, s *simulation.Simulation) {
	url := fmt.Sprintf("http://localhost:%d/api/progress", s.MonitorPort())

	if cfg.OpenMonitor {
		if err := browser.OpenURL(url); err != nil {
			logrus.Warnf("cannot open the monitor: %v", err)
		}
	}

	logrus.Infof("Monitor serving at %s, interrupt to exit", url)

	<-cmd.Context().Done()
}
