package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/quatton/qtoken/pkg/qtoken"
	"github.com/spf13/cobra"
)

// tokenFlags are shared by insert and update.
type tokenFlags struct {
	entity    string
	kind      string
	id        string
	secret    string
	expiresIn time.Duration
	expiry    string
	refreshIn time.Duration
}

func (f *tokenFlags) register(cmd *cobra.Command, withClassification bool) {
	if withClassification {
		cmd.Flags().StringVar(&f.entity, "entity", string(qtoken.EntityApplication), "entity type (APPLICATION, USER, COMBINED, DEVELOPER, UNBOUND or any other tag)")
		cmd.Flags().StringVar(&f.kind, "type", string(qtoken.TokenSimple), "token type (SIMPLE, HMAC_SHA1 or any other tag)")
	}
	cmd.Flags().StringVar(&f.id, "id", "", "token identifier")
	cmd.Flags().StringVar(&f.secret, "secret", "", "token secret")
	cmd.Flags().DurationVar(&f.expiresIn, "expires-in", time.Hour, "lifetime from now; ignored when --expiry is set")
	cmd.Flags().StringVar(&f.expiry, "expiry", "", "absolute expiry (RFC 3339)")
	cmd.Flags().DurationVar(&f.refreshIn, "refresh-in", 30*time.Minute, "time from now after which the token may be refreshed")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("secret")
}

func (f *tokenFlags) token(entity qtoken.EntityType, kind qtoken.TokenType, now time.Time) (*qtoken.Token, error) {
	expiry := now.Add(f.expiresIn)
	if f.expiry != "" {
		parsed, err := time.Parse(time.RFC3339, f.expiry)
		if err != nil {
			return nil, fmt.Errorf("invalid --expiry: %w", err)
		}
		expiry = parsed
	}
	return &qtoken.Token{
		EntityType: entity,
		TokenType:  kind,
		Expiry:     expiry,
		Refresh:    now.Add(f.refreshIn),
		ID:         f.id,
		Secret:     f.secret,
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printToken writes the token as JSON, or null when there is none.
func printToken(cmd *cobra.Command, token *qtoken.Token) error {
	if token == nil {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "null")
		return err
	}
	return printJSON(cmd.OutOrStdout(), token)
}

func newInsertCmd() *cobra.Command {
	flags := &tokenFlags{}
	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Store a token and print its proxy",
		Long: `Store a token until its expiry and print the proxy that addresses it.

Examples:
  qtokenctl insert --id app-1 --secret s3cr3t --expires-in 1h
  qtokenctl insert --entity DEVELOPER --type HMAC_SHA1 --id dev --secret k --expiry 2030-01-01T00:00:00Z`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := flags.token(qtoken.EntityType(flags.entity), qtoken.TokenType(flags.kind), time.Now())
			if err != nil {
				return err
			}

			repo, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			proxy, err := repo.Insert(cmd.Context(), token)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), proxy.String())
			return err
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <proxy>",
		Short: "Print the token stored under a proxy",
		Long:  `Print the token stored under a proxy as JSON, or null if it is absent or expired.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proxy, err := qtoken.ParseProxy(args[0])
			if err != nil {
				return err
			}

			repo, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			token, err := repo.Get(cmd.Context(), proxy)
			if err != nil {
				return err
			}
			return printToken(cmd, token)
		},
	}
}

func newUpdateCmd() *cobra.Command {
	flags := &tokenFlags{}
	cmd := &cobra.Command{
		Use:   "update <proxy>",
		Short: "Replace the token stored under a proxy",
		Long: `Atomically replace the token stored under a proxy and reset its expiry.
The replaced token is printed; null means nothing was stored and nothing was
written. The classification is taken from the proxy.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proxy, err := qtoken.ParseProxy(args[0])
			if err != nil {
				return err
			}
			token, err := flags.token(proxy.EntityType, proxy.TokenType, time.Now())
			if err != nil {
				return err
			}

			repo, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			old, err := repo.Update(cmd.Context(), proxy, token)
			if err != nil {
				return err
			}
			return printToken(cmd, old)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <proxy>",
		Aliases: []string{"rm"},
		Short:   "Delete the token stored under a proxy",
		Long:    `Atomically delete the token stored under a proxy and print it, or null if there was none.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proxy, err := qtoken.ParseProxy(args[0])
			if err != nil {
				return err
			}

			repo, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			old, err := repo.Remove(cmd.Context(), proxy)
			if err != nil {
				return err
			}
			return printToken(cmd, old)
		},
	}
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the token store is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.Ping(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
}
