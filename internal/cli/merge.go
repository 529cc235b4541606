package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hungdoba/jmdict-vi/internal/corpus"
)

func init() {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge chunk files back into one corpus",
		Long: "Concatenate the entries of every *.xml chunk file in a directory into a\n" +
			"single corpus, in file discovery order. Malformed chunks are skipped with a\n" +
			"logged warning.",
		Run: runMerge,
	}

	cmd.Flags().StringP("input", "i", "", "Directory of chunk files (required)")
	cmd.Flags().StringP("output", "o", "", "Output corpus file (required)")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	RootCmd.AddCommand(cmd)
}

func runMerge(cmd *cobra.Command, args []string) {
	in, _ := cmd.Flags().GetString("input")
	out, _ := cmd.Flags().GetString("output")

	n, err := corpus.MergeDir(in, out, logger)
	if err != nil {
		exitErr("merge", err)
	}
	fmt.Printf(`{"ok":true,"entries":%d}`+"\n", n)
}
