package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/jmurray2011/hopen/internal/filesystem"
	"github.com/jmurray2011/hopen/internal/handle"
	"github.com/jmurray2011/hopen/internal/watcher"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Version information (set via ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "hopen [file...]",
	Short: "Open files and take ownership of their handles",
	Long: `hopen opens each file for binary read/write (creating it if missing,
never truncating unless asked), reports files it cannot open and
optionally copies their contents to standard output.`,
	Version:       version,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runOpen,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("hopen %s (commit %s, built %s)\n", version, commit, date))
	addFlags(rootCmd)
	bindFlags(rootCmd)
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("mode", "m", "rw", "open mode: r, w or rw")
	cmd.Flags().Bool("create", true, "create the file if it does not exist (write modes only)")
	cmd.Flags().Bool("truncate", false, "discard existing content on open")
	cmd.Flags().BoolP("cat", "c", false, "copy each file's contents to standard output")
	cmd.Flags().BoolP("wait", "w", false, "wait for each file to appear before opening it")
	cmd.Flags().Duration("wait-timeout", 0, "with --wait, give up after this long (0 waits forever)")
	cmd.Flags().Duration("poll-interval", 100*time.Millisecond, "with --wait, how often to check for the file")
	cmd.Flags().BoolP("quiet", "q", false, "do not print \"unable to read file\" diagnostics")
	cmd.Flags().BoolP("verbose", "v", false, "log handle lifecycle to standard error")
}

// bindFlags binds every flag to viper. HOPEN_<FLAG> environment variables
// override the flag defaults.
func bindFlags(cmd *cobra.Command) {
	viper.SetEnvPrefix("hopen")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for _, name := range []string{
		"mode", "create", "truncate", "cat", "wait",
		"wait-timeout", "poll-interval", "quiet", "verbose",
	} {
		viper.BindPFlag(name, cmd.Flags().Lookup(name))
	}
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "hopen: %v\n", err)
	}
	return err
}

// openModeFromConfig builds the open mode from --mode, --create and --truncate.
func openModeFromConfig() (filesystem.Mode, error) {
	mode, err := filesystem.ParseMode(viper.GetString("mode"))
	if err != nil {
		return filesystem.Mode{}, err
	}
	mode.Create = viper.GetBool("create") && mode.Write
	mode.Truncate = viper.GetBool("truncate")
	if err := mode.Validate(); err != nil {
		return filesystem.Mode{}, err
	}
	return mode, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(w),
	}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	mode, err := openModeFromConfig()
	if err != nil {
		return err
	}

	output := cmd.OutOrStdout()
	logger := newLogger(cmd.ErrOrStderr(), viper.GetBool("verbose"))

	var diagnostics io.Writer = output
	if viper.GetBool("quiet") {
		diagnostics = nil
	}

	opts := []handle.Option{
		handle.WithMode(mode),
		handle.WithDiagnostics(diagnostics),
		handle.WithLogger(logger),
	}

	var errs error
	for _, path := range args {
		if viper.GetBool("wait") {
			if err := waitForPath(ctx, path); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
		}

		if err := openPath(output, path, viper.GetBool("cat"), opts); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

func waitForPath(ctx context.Context, path string) error {
	if timeout := viper.GetDuration("wait-timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return watcher.WaitFor(ctx, path, viper.GetDuration("poll-interval"))
}

// openPath takes the handle for path and either reports its size or copies
// its contents to output. The handle is closed before returning.
func openPath(output io.Writer, path string, cat bool, opts []handle.Option) error {
	return handle.Use(path, func(f filesystem.File) error {
		if cat {
			if _, err := io.Copy(output, f); err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			return nil
		}

		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		fmt.Fprintf(output, "%s: opened (%d bytes)\n", path, info.Size())
		return nil
	}, opts...)
}
