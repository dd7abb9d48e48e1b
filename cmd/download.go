package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ncdownloader/internal/davclient"
	"ncdownloader/internal/downloader"
	"ncdownloader/internal/filter"
	"ncdownloader/internal/models"
	"ncdownloader/internal/share"
	"ncdownloader/pkg/utils"
)

func runDownload(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	resume, _ := cmd.Flags().GetBool("resume")
	globs, _ := cmd.Flags().GetStringArray("glob")

	sh, err := share.Parse(args[0])
	if err != nil {
		return err
	}

	flt, err := filter.New(globs)
	if err != nil {
		return err
	}

	password, err := resolvePassword(cmd)
	if err != nil {
		return err
	}

	outputDir := resolveOutputDir(cmd)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output dir %s: %w", outputDir, err)
	}

	client := davclient.New(sh, password, resolveTimeout(cmd))
	if err := client.Connect(); err != nil {
		return err
	}

	if isVerbose(cmd) {
		cmd.Printf("Reading share contents...\n")
		cmd.Printf("  Share token: %s\n", sh.Token)
		cmd.Printf("  Remote path: %s\n", sh.Path)
		cmd.Printf("  Output dir:  %s\n", outputDir)
	}

	files, err := client.Walk(sh.Path)
	if err != nil {
		return err
	}

	matched := files
	if !flt.Empty() {
		if isVerbose(cmd) {
			cmd.Printf("Filtering by matching file paths to: %v\n", flt.Patterns())
		}
		matched = make([]models.RemoteEntry, 0, len(files))
		for _, f := range files {
			if flt.Match(f.Path) {
				matched = append(matched, f)
			}
		}
	}

	opts := downloader.Options{
		OutputDir: outputDir,
		Resume:    resume,
		Progress:  true,
	}

	plan, err := downloader.Plan(matched, opts)
	if err != nil {
		return err
	}

	sum := downloader.Summarize(plan)
	fmt.Printf("%d file(s) to download, %d to resume, %d already complete. Transfer size: %s\n",
		sum.Download, sum.Resume, sum.Skip, utils.FormatBytes(sum.Bytes))

	if sum.Download+sum.Resume == 0 {
		fmt.Println("Nothing to download.")
		return nil
	}

	if !yes && !confirm("Continue with download?") {
		fmt.Println("Download cancelled.")
		return nil
	}

	result := downloader.New(client, opts).Run(plan)
	result.ShareToken = sh.Token
	result.SourcePath = sh.Path

	if err := utils.PrintJSON(result); err != nil {
		return err
	}

	// per-file failures are best effort: reported, but not a fatal error
	if result.Failed > 0 {
		slog.Warn("some files could not be downloaded", "failed", result.Failed)
	}

	if isVerbose(cmd) {
		cmd.Println("Download operation completed")
	}
	return nil
}
