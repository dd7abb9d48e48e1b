package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ncdownloader/config"
)

var (
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ncdownloader <share-url>",
	Short: "Recursive downloader for NextCloud public share links",
	Long: `ncdownloader mirrors the directory tree behind a NextCloud public
share link into a local output directory.

Files can be filtered by glob patterns and partially downloaded files can
be continued with --resume. Defaults are loaded from a .env file or
environment variables (NC_SHARE_PASSWORD, NC_OUTPUT, NC_TIMEOUT).`,
	Example: `  # Download a whole share into the current directory
  ncdownloader https://cloud.example.com/s/d9kJWfLprDpSRTR

  # Password-protected share, custom output directory
  ncdownloader https://cloud.example.com/s/d9kJWfLprDpSRTR -p secret -o ./mirror

  # Only text files and anything versioned _1, no prompts, resumable
  ncdownloader https://cloud.example.com/s/d9kJWfLprDpSRTR -y -R -g "*.txt" -g "*_1.*"

  # Sub-directory of a share, password read from the terminal
  ncdownloader "https://cloud.example.com/s/d9kJWfLprDpSRTR?path=%2Fphotos" --password-prompt`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownload(cmd, args)
	},
}

func Execute(config *config.Config) error {
	cfg = config
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(listCmd)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("password", "p", "", "Password for a protected share")
	rootCmd.PersistentFlags().Bool("password-prompt", false, "Prompt for the password for a protected share")
	rootCmd.PersistentFlags().Int("timeout", 0, "HTTP timeout in seconds (default from NC_TIMEOUT, 3600)")

	rootCmd.Flags().BoolP("yes", "y", false, "Set any confirmation values to 'yes' automatically")
	rootCmd.Flags().StringP("output", "o", "", "Output dir (default from NC_OUTPUT, current directory)")
	rootCmd.Flags().BoolP("resume", "R", false, "Resume partially downloaded files")
	rootCmd.Flags().StringArrayP("glob", "g", nil, "Glob pattern for filtering files by their path (repeatable)")
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

// resolvePassword picks the share password: an interactive prompt wins
// over the -p flag, which wins over the configured default.
func resolvePassword(cmd *cobra.Command) (string, error) {
	if prompt, _ := cmd.Flags().GetBool("password-prompt"); prompt {
		fmt.Fprint(os.Stderr, "Share password: ")
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("cannot read password from terminal: %w", err)
		}
		return string(pw), nil
	}
	if pw, _ := cmd.Flags().GetString("password"); pw != "" {
		return pw, nil
	}
	return cfg.Password, nil
}

func resolveOutputDir(cmd *cobra.Command) string {
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		return output
	}
	if cfg.OutputDir != "" {
		return cfg.OutputDir
	}
	return "."
}

func resolveTimeout(cmd *cobra.Command) time.Duration {
	if timeout, _ := cmd.Flags().GetInt("timeout"); timeout > 0 {
		return time.Duration(timeout) * time.Second
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

func confirm(question string) bool {
	fmt.Printf("%s (y/N): ", question)
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "yes" || response == "Y" || response == "YES"
}
