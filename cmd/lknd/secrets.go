package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JoseAndresM/LKND/internal/secrets"
)

var knownSecrets = []string{secrets.TelegramToken, secrets.LLMAPIKey, secrets.IMAPPassword}

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage keychain-held credentials",
	Long:  "Stores credentials in the OS keychain so they never sit in the config file. Known names: " + strings.Join(knownSecrets, ", ") + ".",
}

var secretsSetCmd = &cobra.Command{
	Use:   "set <name> [value]",
	Short: "Store a credential",
	Long:  "Stores a credential under the given name. When value is omitted it is read from stdin, which keeps it out of the shell history.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSecretsSet,
}

var secretsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a credential",
	Args:  cobra.ExactArgs(1),
	RunE:  runSecretsDelete,
}

func init() {
	rootCmd.AddCommand(secretsCmd)
	secretsCmd.AddCommand(secretsSetCmd)
	secretsCmd.AddCommand(secretsDeleteCmd)
}

func checkSecretName(name string) error {
	for _, known := range knownSecrets {
		if name == known {
			return nil
		}
	}
	return fmt.Errorf("unknown secret %q (known names: %s)", name, strings.Join(knownSecrets, ", "))
}

func runSecretsSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := checkSecretName(name); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		fmt.Fprint(os.Stderr, "value: ")
		sc := bufio.NewScanner(os.Stdin)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				fmt.Fprintf(os.Stderr, "read value: %v\n", err)
			} else {
				fmt.Fprintln(os.Stderr, "no value given")
			}
			os.Exit(1)
		}
		value = strings.TrimSpace(sc.Text())
	}

	if err := secrets.Set(name, value); err != nil {
		fmt.Fprintf(os.Stderr, "store secret: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("stored %s\n", name)
	return nil
}

func runSecretsDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	if err := checkSecretName(name); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if err := secrets.Delete(name); err != nil {
		fmt.Fprintf(os.Stderr, "delete secret: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("deleted %s\n", name)
	return nil
}
