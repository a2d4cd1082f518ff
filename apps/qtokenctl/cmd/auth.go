package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAuthCmd() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the token store password in the OS keyring",
		Long: `Keep the Redis/Valkey password in the OS keyring instead of the
environment. The entry is keyed by the sentinel master name, or by the first
address when there is no sentinel. Set QTOKEN_REDIS_PASSWORD_KEYRING=true so
other commands read it.

Examples:
  qtokenctl auth set-password
  echo "$PASSWORD" | qtokenctl auth set-password
  qtokenctl auth clear-password`,
	}

	authCmd.AddCommand(&cobra.Command{
		Use:   "set-password",
		Short: "Store the token store password in the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := GetConfig(cmd)
			if err != nil {
				return err
			}
			secret, err := readSecret(cmd)
			if err != nil {
				return err
			}
			if secret == "" {
				return errors.New("empty password")
			}
			if err := cfg.SavePassword(secret); err != nil {
				return fmt.Errorf("saving password to keyring: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Password saved")
			return err
		},
	})

	authCmd.AddCommand(&cobra.Command{
		Use:   "clear-password",
		Short: "Remove the token store password from the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := GetConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.DeletePassword(); err != nil {
				return fmt.Errorf("removing password from keyring: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Password removed")
			return err
		},
	})

	return authCmd
}

// readSecret prompts without echo on a terminal and otherwise reads the
// first line of the command's input.
func readSecret(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
