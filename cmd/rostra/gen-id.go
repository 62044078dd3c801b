package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rostra-dev/rostra/pkg/identity"
)

var genIDCmd = &cobra.Command{
	Use:   "gen-id",
	Short: "Generate a new identity",
	Long: `Generate a fresh Ed25519 identity and its 24-word recovery mnemonic.

With --secret-file, the mnemonic is written to that path (mode 0600) and
only the rendered rostra id is printed to stdout; without it, both are
printed and the caller is responsible for storing the secret safely.`,
	RunE: runGenID,
}

func init() {
	genIDCmd.Flags().String("secret-file", "", "Write the identity secret to this file instead of stdout")
}

func runGenID(cmd *cobra.Command, args []string) error {
	secretFile, _ := cmd.Flags().GetString("secret-file")

	ident, err := identity.Generate()
	if err != nil {
		return fmt.Errorf("generate identity: %w", err)
	}
	rendered, err := identity.Render(ident.Public)
	if err != nil {
		return fmt.Errorf("render identity: %w", err)
	}

	if secretFile == "" {
		fmt.Printf("rostra_id: %s\n", rendered)
		fmt.Printf("rostra_id_secret: %s\n", ident.Mnemonic)
		return nil
	}

	if err := os.WriteFile(secretFile, []byte(ident.Mnemonic+"\n"), 0o600); err != nil {
		return fmt.Errorf("write secret file: %w", err)
	}
	fmt.Printf("rostra_id: %s\n", rendered)
	fmt.Printf("secret written to %s\n", secretFile)
	return nil
}
