package cmd

import (
	"github.com/spf13/cobra"

	"ncdownloader/internal/davclient"
	"ncdownloader/internal/models"
	"ncdownloader/internal/share"
	"ncdownloader/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list <share-url>",
	Short: "List the files of a share without downloading",
	Long: `List every file reachable through a NextCloud public share link,
with sizes and modification times, without writing anything to disk.`,
	Example: `  # List a whole share
  ncdownloader list https://cloud.example.com/s/d9kJWfLprDpSRTR

  # List a protected share
  ncdownloader list https://cloud.example.com/s/d9kJWfLprDpSRTR -p secret`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, args)
	},
}

func runList(cmd *cobra.Command, args []string) error {
	sh, err := share.Parse(args[0])
	if err != nil {
		return err
	}

	password, err := resolvePassword(cmd)
	if err != nil {
		return err
	}

	client := davclient.New(sh, password, resolveTimeout(cmd))
	if err := client.Connect(); err != nil {
		return err
	}

	if isVerbose(cmd) {
		cmd.Printf("Listing share %s at %s\n", sh.Token, sh.Path)
	}

	files, err := client.Walk(sh.Path)
	if err != nil {
		return err
	}

	result := &models.ListResult{
		ShareToken: sh.Token,
		SourcePath: sh.Path,
		Entries:    files,
		TotalFiles: len(files),
	}
	for _, f := range files {
		result.TotalSizeBytes += f.Size
	}
	result.TotalSizeHuman = utils.FormatBytes(result.TotalSizeBytes)

	return utils.PrintJSON(result)
}
