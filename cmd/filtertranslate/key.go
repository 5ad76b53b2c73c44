package main

import (
	"fmt"
	"strings"

	"github.com/oukeidos/filtertranslate/internal/auth"
	"github.com/oukeidos/filtertranslate/internal/prompt"
	"github.com/spf13/cobra"
)

type keyOptions struct {
	service string
	yes     bool
}

var (
	saveKey   = auth.SaveKey
	deleteKey = auth.DeleteKey
	confirmer = prompt.DefaultConfirmer
)

func newKeyCmd() *cobra.Command {
	opts := keyOptions{}
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage LLM API keys in the OS keychain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyStatus(cmd, &opts)
		},
	}

	cmd.SetUsageTemplate(keyUsageTemplate)
	cmd.PersistentFlags().StringVar(&opts.service, "service", "gemini", fmt.Sprintf("Service to manage (%s)", strings.Join(auth.Services(), " or ")))

	cmd.AddCommand(
		newKeySetupCmd(&opts),
		newKeyDeleteCmd(&opts),
		newKeyStatusCmd(&opts),
	)
	return cmd
}

func newKeySetupCmd(opts *keyOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Save API key to keychain (prompt only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeySetup(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newKeyDeleteCmd(opts *keyOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete key from keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyDelete(cmd, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Delete without asking")
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func newKeyStatusCmd(opts *keyOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show key status (default if no action given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyStatus(cmd, opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	return cmd
}

func normalizeService(service string) (string, error) {
	svc := strings.ToLower(strings.TrimSpace(service))
	if auth.EnvVar(svc) == "" {
		return "", fmt.Errorf("invalid service %q; must be one of %s", service, strings.Join(auth.Services(), ", "))
	}
	return svc, nil
}

func runKeySetup(cmd *cobra.Command, opts *keyOptions) error {
	svc, err := normalizeService(opts.service)
	if err != nil {
		return err
	}
	key, err := promptForKey(fmt.Sprintf("%s API Key: ", serviceLabel(svc)))
	if err != nil {
		return fmt.Errorf("error reading key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key is required for setup")
	}
	if err := saveKey(svc, key); err != nil {
		return fmt.Errorf("error saving key: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s API key to keychain.\n", svc)
	return nil
}

func runKeyDelete(cmd *cobra.Command, opts *keyOptions) error {
	svc, err := normalizeService(opts.service)
	if err != nil {
		return err
	}
	ok, err := confirmer().Confirm(fmt.Sprintf("Delete the %s API key from the keychain?", svc), opts.yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}
	if err := deleteKey(svc); err != nil {
		return fmt.Errorf("error deleting key: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s API key from keychain.\n", svc)
	return nil
}

func runKeyStatus(cmd *cobra.Command, opts *keyOptions) error {
	svc, err := normalizeService(opts.service)
	if err != nil {
		return err
	}
	if getStatus(svc) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s API Key: Found (source=%s)\n", svc, auth.SourceKeychain)
		return nil
	}
	if envKey, ok := getEnvKey(svc); ok && envKey != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s API Key: Found (source=%s; disabled by default, use --allow-env)\n", svc, auth.SourceEnv)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s API Key: Not Found (keychain empty, %s not set)\n", svc, auth.EnvVar(svc))
	return nil
}
