// Package main is the entry point for the mailprobe binary: it loads
// configuration, validates one address through the full pipeline and
// prints the JSON result. Exit code 1 means the address is not
// deliverable, 2 means the run itself failed.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/optimode/mailprobe"
	"github.com/optimode/mailprobe/config"
	"github.com/optimode/mailprobe/internal/logging"
	"github.com/optimode/mailprobe/types"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			// Fail-fast rejection: report it, exit like an invalid result.
			fmt.Fprintf(os.Stderr, "rejected: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mailprobe <email>",
		Short: "Check whether an email address is deliverable",
		Long: `mailprobe checks an address in four stages: syntactic format,
domain allow-list, MX resolution, and a live SMTP RCPT probe that asks
the mail server whether it would accept the address without sending mail.

Configuration comes from config.yaml and MAILPROBE_* environment
variables; flags override both.

Example:
  MAILPROBE_SENDER_EMAIL=probe@example.com mailprobe user@gmail.com`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runProbe,
	}

	rootCmd.Flags().StringP("config", "c", "", "Directory containing config.yaml")
	rootCmd.Flags().StringP("sender", "s", "", "Sender address used as the probe's return-path")
	rootCmd.Flags().StringP("log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().Bool("fail-fast", false, "Exit on the first failure instead of reporting a result")

	return rootCmd
}

func runProbe(cmd *cobra.Command, args []string) error {
	configDir, _ := cmd.Flags().GetString("config")
	sender, _ := cmd.Flags().GetString("sender")
	logLevel, _ := cmd.Flags().GetString("log-level")
	failFast, _ := cmd.Flags().GetBool("fail-fast")

	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	if sender != "" {
		cfg.SenderEmail = sender
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger := logging.New(cfg.Logging.Level)

	v, err := mailprobe.New(mailprobe.Config{
		AllowedDomains: cfg.AllowedDomains,
		SenderEmail:    cfg.SenderEmail,
		DNSTimeout:     cfg.DNSTimeout,
		SMTPTimeout:    cfg.SMTPTimeout,
		SMTPPort:       cfg.SMTPPort,
		HeloDomain:     cfg.HeloDomain,
		Logger:         &logger,
	})
	if err != nil {
		return err
	}

	result, err := v.Validate(context.Background(), args[0], mailprobe.RequestOptions{
		FailFast: failFast,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if !result.Valid {
		os.Exit(1)
	}
	return nil
}
