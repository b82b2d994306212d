package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/contribs/internal/sent"
)

// NewCmdSent creates the sent command for inspecting the delivery ledger.
func NewCmdSent() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sent",
		Short: "Inspect or reset the record of sent summaries",
		Long: `notify remembers the last summary delivered to each recipient and subject,
and skips an unchanged summary until mail.resend_after has passed.`,
	}

	cmd.AddCommand(newCmdSentStatus())
	cmd.AddCommand(newCmdSentForget())

	return cmd
}

type sentKeyOptions struct {
	to      string
	subject string
}

func addSentKeyFlags(cmd *cobra.Command, o *sentKeyOptions) {
	cmd.Flags().StringVar(&o.to, "to", "", "Recipient address")
	cmd.Flags().StringVar(&o.subject, "subject", "", "Email subject the summary was sent with")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("subject")
}

func newCmdSentStatus() *cobra.Command {
	o := &sentKeyOptions{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show when a summary was last sent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, err := sent.NewStore()
			if err != nil {
				return fmt.Errorf("failed to open sent ledger: %w", err)
			}

			entry, ok := ledger.Last(sent.Key(o.to, o.subject))
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing sent to %s with subject %q.\n", o.to, o.subject)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Last sent to %s at %s (fingerprint %s)\n",
				o.to, entry.SentAt.Local().Format(time.RFC1123), shortFingerprint(entry.Fingerprint))
			return nil
		},
	}
	addSentKeyFlags(cmd, o)
	return cmd
}

func newCmdSentForget() *cobra.Command {
	o := &sentKeyOptions{}
	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Forget a sent summary so the next notify delivers it again",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, err := sent.NewStore()
			if err != nil {
				return fmt.Errorf("failed to open sent ledger: %w", err)
			}

			key := sent.Key(o.to, o.subject)
			if _, ok := ledger.Last(key); !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing sent to %s with subject %q.\n", o.to, o.subject)
				return nil
			}
			if err := ledger.Forget(key); err != nil {
				return fmt.Errorf("failed to update sent ledger: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot summary sent to %s.\n", o.to)
			return nil
		},
	}
	addSentKeyFlags(cmd, o)
	return cmd
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
