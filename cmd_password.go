package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// hashPasswordCmd produces the value of KILN_OBSERVER_PASSWORD_HASH.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash an observer passphrase read from stdin",
	Long: `Read a passphrase from the first line of stdin and print its bcrypt
hash, ready to be stored in KILN_OBSERVER_PASSWORD_HASH.`,
	Args: cobra.NoArgs,
	// Hashing needs no store or logger.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read passphrase: %w", err)
		}
		passphrase := strings.TrimRight(line, "\r\n")
		if passphrase == "" {
			return fmt.Errorf("passphrase cannot be empty")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash passphrase: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(hash))
		return err
	},
}
