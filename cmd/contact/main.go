package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kenobul/portfolio/internal/contact"
	"github.com/kenobul/portfolio/pkg/logging"
)

const defaultEndpoint = "http://localhost:8080/api/send-email"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "contact",
		Short:         "Submit and check portfolio contact-form messages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSendCmd(), newValidateCmd())
	return root
}

type draftFlags struct {
	sub contact.Submission
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sub.Name, "name", "", "sender name")
	cmd.Flags().StringVar(&f.sub.Email, "email", "", "sender email address")
	cmd.Flags().StringVar(&f.sub.Phone, "phone", "", "sender phone number")
	cmd.Flags().StringVar(&f.sub.Subject, "subject", "", "message subject")
	cmd.Flags().StringVar(&f.sub.Message, "message", "", "message body")
	cmd.Flags().StringVar(&f.sub.BotCheck, "bot-check", "", "honeypot value")
	_ = cmd.Flags().MarkHidden("bot-check")
}

func newSendCmd() *cobra.Command {
	var (
		draft    draftFlags
		endpoint string
		timeout  time.Duration
		logLevel string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Validate a message and post it to the contact endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := contact.NewFormClient(endpoint,
				contact.WithNotifier(contact.NewWriterNotifier(cmd.OutOrStdout())),
				contact.WithLogger(logging.NewWithWriter(logLevel, cmd.ErrOrStderr())),
			)
			client.SetDraft(draft.sub)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			outcome, err := client.Submit(ctx)
			switch outcome {
			case contact.OutcomeSent:
				return nil
			case contact.OutcomeDropped:
				fmt.Fprintln(cmd.OutOrStdout(), "submission dropped")
				return nil
			case contact.OutcomeInvalid:
				printFieldErrors(cmd, client.FieldErrors())
				return errors.New("submission is invalid")
			default:
				return err
			}
		},
	}
	draft.register(cmd)
	cmd.Flags().StringVar(&endpoint, "endpoint", envOr("CONTACT_ENDPOINT", defaultEndpoint), "send-email endpoint URL")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	cmd.Flags().StringVar(&logLevel, "log-level", "error", "client log level")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var draft draftFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a message without sending it",
		RunE: func(cmd *cobra.Command, args []string) error {
			fieldErrs, err := draft.sub.Validate()
			if errors.Is(err, contact.ErrBotDetected) {
				fmt.Fprintln(cmd.OutOrStdout(), "honeypot filled; submission would be dropped")
				return nil
			}
			if !fieldErrs.Empty() {
				printFieldErrors(cmd, fieldErrs)
				return errors.New("submission is invalid")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	draft.register(cmd)
	return cmd
}

func printFieldErrors(cmd *cobra.Command, errs contact.FieldErrors) {
	for _, field := range errs.Fields() {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", field, errs[field])
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
