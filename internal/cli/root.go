package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subtext/internal/config"
	"github.com/mgpai22/subtext/internal/logging"
)

var (
	verbose    bool
	configPath string
	envFile    string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "subtext",
	Short: "Collect YouTube captions and turn them into readable text",
	Long: `Subtext lists YouTube channels, downloads their captions with yt-dlp
and converts the SRT files into Markdown transcripts and summaries.

Settings are read from subtext.yaml when present; flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		if err := loadEnv(envFile, cmd.Flags().Changed("env-file")); err != nil {
			return err
		}

		loaded, err := config.Load(configPath, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		cfg = loaded
		if cfg.Path() != "" {
			logger.Debugw("Loaded config", "path", cfg.Path())
		}

		if cmd.Flags().Changed("proxy") {
			cfg.Proxy, _ = cmd.Flags().GetString("proxy")
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// loads API keys from a dotenv file; a missing default file is fine
func loadEnv(path string, explicit bool) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().
		StringVar(&envFile, "env-file", ".env", "File with API keys and other environment variables")
	rootCmd.PersistentFlags().
		String("proxy", "", "Proxy URL passed to yt-dlp (e.g., http://127.0.0.1:7897)")
}
