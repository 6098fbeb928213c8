package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/tidsplan/internal/adapters/storage/sqlite"
	"github.com/hylla/tidsplan/internal/app"
	"github.com/hylla/tidsplan/internal/config"
	"github.com/hylla/tidsplan/internal/platform"
	"github.com/spf13/cobra"
)

// version stores a package-level helper value.
var version = "dev"

// main handles main.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the tidsplan command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tidsplan",
		Short:         "Critical-path scheduling for dependent tasks",
		Long:          "Tidsplan stores tasks, typed dependencies, and milestones, and computes start/finish dates, slack, and the critical path with the critical path method.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("TIDSPLAN_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	appName := "tidsplan"
	if envApp := strings.TrimSpace(os.Getenv("TIDSPLAN_APP_NAME")); envApp != "" {
		appName = envApp
	}

	root.PersistentFlags().String("config", "", "path to config TOML")
	root.PersistentFlags().String("db", "", "path to sqlite database")
	root.PersistentFlags().String("app", appName, "application name for config/data path resolution")
	root.PersistentFlags().Bool("dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newTaskCmd(),
		newDepCmd(),
		newMilestoneCmd(),
		newScheduleCmd(),
		newCascadeCmd(),
		newReconcileCmd(),
		newPathsCmd(),
	)
	return root
}

// runtime bundles the wired collaborators one command invocation needs.
type runtime struct {
	cfg    config.Config
	paths  platform.Paths
	logger *runtimeLogger
	repo   *sqlite.Repository
	svc    *app.Service
}

// openRuntime resolves paths and config from the root flags and opens the
// store. Callers must Close.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	configPath, _ := cmd.Flags().GetString("config")
	dbPath, _ := cmd.Flags().GetString("db")
	appName, _ := cmd.Flags().GetString("app")
	devMode, _ := cmd.Flags().GetBool("dev")

	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: appName,
		DevMode: devMode,
	})
	if err != nil {
		return nil, err
	}

	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TIDSPLAN_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	cfg, err := config.Load(configPath, config.Default(paths.DBPath))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dbPath) != "" {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(os.Stderr, appName, devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, err
	}

	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	svc := app.NewService(repo, uuid.NewString, time.Now, logger.consoleSink)
	return &runtime{
		cfg:    cfg,
		paths:  paths,
		logger: logger,
		repo:   repo,
		svc:    svc,
	}, nil
}

// Close closes the runtime's store and log sinks.
func (rt *runtime) Close() {
	_ = rt.repo.Close()
	_ = rt.logger.Close()
}

// serviceAt rebuilds the app service with a fixed clock so --today and
// schedule.today_override pin the run's reference date.
func (rt *runtime) serviceAt(ref time.Time) *app.Service {
	return app.NewService(rt.repo, uuid.NewString, func() time.Time { return ref }, rt.logger.consoleSink)
}

// today resolves the schedule reference date from flag, config, then clock.
func (rt *runtime) today(flagValue string) (time.Time, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		ts, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --today %q: expected YYYY-MM-DD", flagValue)
		}
		return ts, nil
	}
	return rt.cfg.Today(time.Now()), nil
}

// newPathsCmd reports the resolved config/data locations.
func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show resolved config and data paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			appName, _ := cmd.Flags().GetString("app")
			devMode, _ := cmd.Flags().GetBool("dev")
			paths, err := platform.DefaultPathsWithOptions(platform.Options{
				AppName: appName,
				DevMode: devMode,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "app: %s\n", appName)
			fmt.Fprintf(out, "dev_mode: %t\n", devMode)
			fmt.Fprintf(out, "config: %s\n", paths.ConfigPath)
			fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			fmt.Fprintf(out, "db: %s\n", paths.DBPath)
			return nil
		},
	}
}

// parseBoolEnv parses a boolean environment variable.
func parseBoolEnv(key string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// parseDateFlag parses an optional YYYY-MM-DD flag value.
func parseDateFlag(name, value string) (*time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, nil
	}
	ts, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, value)
	}
	return &ts, nil
}
