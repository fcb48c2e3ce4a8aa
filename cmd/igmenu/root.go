package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"igmenu/pkg/config"
	"igmenu/pkg/fetch"
	"igmenu/pkg/instagram"
	"igmenu/pkg/logger"
	"igmenu/pkg/menu"
	"igmenu/pkg/session"
	"igmenu/pkg/storage"
	"igmenu/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	dataDir    string
	noColor    bool
)

// rootCmd starts the interactive menu
var rootCmd = &cobra.Command{
	Use:   "igmenu",
	Short: "Interactive Instagram downloader",
	Long: `igmenu logs in to Instagram once and then offers a menu to download a
profile's posts, current stories, followers list or followees list.

Files are written below the data directory (default: "data" next to the
executable) as <data>/<username>/{posts,stories,followers,followees}.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, commandLineFlags(cmd))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// Execute runs the root command and exits non-zero when startup fails
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.igmenu.yaml or $HOME/.config/igmenu/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, config.FlagLogLevel, "", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().StringVar(&dataDir, config.FlagDataDir, "", "directory downloads are written to (default is data next to the executable)")
	rootCmd.PersistentFlags().BoolVar(&noColor, config.FlagNoColor, false, "disable colored output")

	rootCmd.SetVersionTemplate(`igmenu {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// commandLineFlags collects the flags the user set explicitly
func commandLineFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed(config.FlagLogLevel) {
		flags[config.FlagLogLevel] = logLevel
	}
	if cmd.Flags().Changed(config.FlagDataDir) {
		flags[config.FlagDataDir] = dataDir
	}
	if cmd.Flags().Changed(config.FlagNoColor) {
		flags[config.FlagNoColor] = noColor
	}
	return flags
}

// run wires the client, storage, session and fetchers and serves the menu
// until the user exits
func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	root, err := cfg.DataDirectory()
	if err != nil {
		return err
	}

	store := storage.NewManager(afero.NewOsFs(), root)
	term := ui.NewTerminal(out, cfg.Output.NoColor)

	client, err := instagram.NewClient(&cfg.Instagram, store, log)
	if err != nil {
		return err
	}

	logger.WithField("version", version).InfoWithFields("igmenu starting", map[string]interface{}{
		"data_dir": store.BaseDir(),
	})

	m := menu.New(
		session.NewManager(client, term, log),
		fetch.NewService(client, store, term, log),
		in,
		term,
		log,
	)

	if err := m.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			term.Println("")
			log.Info("interrupted")
			return nil
		}
		logger.WithError(err).Error("menu stopped")
		return err
	}
	return nil
}
