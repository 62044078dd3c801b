package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rostra-dev/rostra/pkg/identity"
	"github.com/rostra-dev/rostra/pkg/storage"
)

var headsCmd = &cobra.Command{
	Use:   "heads <rostra-id>",
	Short: "Print an author's current heads directly from the store",
	Long: `heads reads the author's rows of the heads table straight off disk, without
starting the HTTP server — useful for inspecting a data directory while
web-ui is not running.`,
	Args: cobra.ExactArgs(1),
	RunE: runHeads,
}

func init() {
	headsCmd.Flags().String("data-dir", "", "Directory holding the store (required)")
	_ = headsCmd.MarkFlagRequired("data-dir")
	rootCmd.AddCommand(headsCmd)
}

func runHeads(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")

	author, err := identity.Parse(args[0])
	if err != nil {
		return fmt.Errorf("parse rostra id: %w", err)
	}

	store, err := storage.Open(dataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	var heads []string
	err = store.View(func(tx *storage.Tx) error {
		for _, id := range tx.ListHeads(author) {
			heads = append(heads, hex.EncodeToString(id[:]))
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, h := range heads {
		fmt.Println(h)
	}
	return nil
}
