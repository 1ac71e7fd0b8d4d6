package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wordduel/internal/diag"
)

var tokenHashCmd = &cobra.Command{
	Use:   "token-hash <token>",
	Short: "Print the bcrypt hash to put in diag.token_hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := diag.HashToken(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}
