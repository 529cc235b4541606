package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hungdoba/jmdict-vi/internal/enrich"
)

func init() {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Enrich a corpus with Vietnamese glosses",
		Long: "Enrich a JMdict corpus with Vietnamese glosses from the dictionary database.\n" +
			"With a directory as input, every *.xml chunk inside is processed; chunks whose\n" +
			"output already exists are skipped so an interrupted batch can resume.\n" +
			"Entry order is always preserved; entries that fail to process keep their\n" +
			"original form.",
		Run: runEnrich,
	}

	cmd.Flags().StringP("input", "i", "", "Input corpus file or directory of chunk files (required)")
	cmd.Flags().StringP("output", "o", "", "Output file, or directory when input is a directory (required)")
	cmd.Flags().IntP("workers", "w", 0, "Worker count (default: $JMDICT_VI_WORKERS or all CPUs)")
	cmd.Flags().Bool("no-progress", false, "Disable the progress bar")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	RootCmd.AddCommand(cmd)
}

func runEnrich(cmd *cobra.Command, args []string) {
	in, _ := cmd.Flags().GetString("input")
	out, _ := cmd.Flags().GetString("output")
	workers, _ := cmd.Flags().GetInt("workers")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	if workers == 0 {
		workers = cfg.Workers
	}

	p := enrich.New(enrich.Config{
		StorePath: storePath,
		Workers:   workers,
		Progress:  !noProgress,
		Log:       logger,
	})

	info, err := os.Stat(in)
	if err != nil {
		exitErr("read input", err)
	}

	var summaries []*enrich.Summary
	if info.IsDir() {
		summaries, err = p.RunDir(cmd.Context(), in, out)
	} else {
		var sum *enrich.Summary
		sum, err = p.Run(cmd.Context(), in, out)
		summaries = []*enrich.Summary{sum}
	}
	if err != nil {
		exitErr("enrich", err)
	}

	b, _ := json.MarshalIndent(summaries, "", "  ")
	fmt.Println(string(b))
}
