package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hungdoba/jmdict-vi/internal/corpus"
)

func init() {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a corpus into fixed-size chunk files",
		Long: "Split a JMdict corpus into sequentially numbered chunk files of N entries\n" +
			"each, declaration and root attributes preserved.",
		Run: runSplit,
	}

	cmd.Flags().StringP("input", "i", "", "Input corpus file (required)")
	cmd.Flags().StringP("output", "o", "", "Output directory (required)")
	cmd.Flags().IntP("entries", "e", 0, "Entries per chunk (default: $JMDICT_VI_CHUNK_ENTRIES or 1000)")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	RootCmd.AddCommand(cmd)
}

func runSplit(cmd *cobra.Command, args []string) {
	in, _ := cmd.Flags().GetString("input")
	out, _ := cmd.Flags().GetString("output")
	perChunk, _ := cmd.Flags().GetInt("entries")
	if perChunk == 0 {
		perChunk = cfg.ChunkEntries
	}

	n, err := corpus.Split(in, out, perChunk)
	if err != nil {
		exitErr("split", err)
	}
	fmt.Printf(`{"ok":true,"chunks":%d}`+"\n", n)
}
