package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/contribs/config"
	"github.com/spiffcs/contribs/internal/duration"
	"github.com/spiffcs/contribs/internal/log"
	"github.com/spiffcs/contribs/internal/mail"
	"github.com/spiffcs/contribs/internal/render"
	"github.com/spiffcs/contribs/internal/sent"
	"github.com/spiffcs/contribs/internal/tui"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NewCmdNotify creates the notify command.
func NewCmdNotify(opts *Options) *cobra.Command {
	nopts := &NotifyOptions{}

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Email the contributor summary",
		Long: `Renders the capped contributor list as an email and sends it over SMTP.

Sending is off unless mail.enabled is set in the config file or
CONTRIBS_USE_EMAIL=true. SMTP credentials come from CONTRIBS_MAIL_USERNAME
and CONTRIBS_MAIL_PASSWORD. An unchanged summary is not sent again to the
same recipient and subject until mail.resend_after has passed.`,
		Example: `  contribs notify --repo spiffcs/contribs --to maintainers@example.com
  contribs notify --file contributors.yaml --to me@example.com --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNotify(cmd, opts, nopts)
		},
	}

	addSourceFlags(cmd, opts)
	cmd.Flags().StringVar(&nopts.To, "to", "", "Recipient address")
	cmd.Flags().StringSliceVar(&nopts.Bcc, "bcc", nil, "Blind copy recipients")
	cmd.Flags().StringVar(&nopts.Subject, "subject", "", "Override the email subject")
	cmd.Flags().BoolVar(&nopts.DryRun, "dry-run", false, "Print the message instead of sending it")
	cmd.Flags().BoolVar(&nopts.Force, "force", false, "Send even if this summary was already sent")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runNotify(cmd *cobra.Command, opts *Options, nopts *NotifyOptions) error {
	if cmd.Flags().Changed("max") {
		opts.maxShownSet = true
	}

	rt := setupRuntime(cmd.Context(), opts, tui.NotifyTasks())
	rt.startTUI()
	defer rt.close()

	return notify(cmd, rt, opts, nopts)
}

// notify loads, renders and delivers one summary under rt. Once the user
// cancels, nothing is sent and the ledger is left untouched.
func notify(cmd *cobra.Command, rt *runtime, opts *Options, nopts *NotifyOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settings := cfg.GetMailSettings()

	rows, subject, err := loadRows(rt.ctx, cfg, opts, rt)
	if err := rt.cancelled(); err != nil {
		return err
	}
	if err != nil {
		return err
	}

	out := render.Render(message.NewPrinter(language.English), render.Input{
		Subject: subject,
		Rows:    rows,
		Channel: render.ChannelEmail,
	})
	msg := mail.Message{
		From:    settings.From,
		To:      nopts.To,
		Bcc:     nopts.Bcc,
		ReplyTo: settings.ReplyTo,
		Subject: out.EmailSubject,
		Body:    out.BodyText,
	}
	if nopts.Subject != "" {
		msg.Subject = nopts.Subject
	}

	cutoff, err := duration.Cutoff(settings.ResendAfter, time.Now())
	if err != nil {
		return fmt.Errorf("invalid mail.resend_after: %w", err)
	}

	if err := rt.cancelled(); err != nil {
		return err
	}

	var ledger *sent.Store
	key := sent.Key(msg.To, msg.Subject)
	fingerprint := sent.Fingerprint(rows)
	if !nopts.DryRun {
		ledger, err = sent.NewStore()
		if err != nil {
			log.Warn("sent ledger unavailable, duplicate suppression disabled", "error", err)
		}
	}
	if ledger != nil && !nopts.Force && !ledger.ShouldSend(key, fingerprint, cutoff) {
		rt.sendTaskEvent(tui.TaskDeliver, tui.StatusSkipped, tui.WithMessage("unchanged since last send"))
		if err := rt.close(); errors.Is(err, tui.ErrCancelled) {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Summary unchanged since last send to %s; skipping (use --force to resend).\n", msg.To)
		return nil
	}

	var preview bytes.Buffer
	sender, policy, err := newSender(settings, nopts, &preview)
	if err != nil {
		return err
	}

	if err := rt.cancelled(); err != nil {
		return err
	}
	rt.sendTaskEvent(tui.TaskDeliver, tui.StatusRunning)
	err = mail.NewDispatcher(sender, policy).Dispatch(rt.ctx, msg)
	if err != nil && rt.cancelled() != nil {
		return tui.ErrCancelled
	}
	switch {
	case errors.Is(err, mail.ErrDisabled):
		rt.sendTaskEvent(tui.TaskDeliver, tui.StatusSkipped, tui.WithMessage("email disabled"))
		if err := rt.close(); errors.Is(err, tui.ErrCancelled) {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Email sending is disabled; set mail.enabled in the config file or CONTRIBS_USE_EMAIL=true.")
		return nil
	case err != nil:
		rt.sendTaskEvent(tui.TaskDeliver, tui.StatusError, tui.WithError(err))
		return err
	}
	rt.sendTaskEvent(tui.TaskDeliver, tui.StatusComplete, tui.WithCount(len(msg.Recipients())))

	if ledger != nil {
		if err := ledger.Record(key, fingerprint, time.Now()); err != nil {
			log.Warn("failed to record sent summary", "error", err)
		}
	}

	if err := rt.close(); errors.Is(err, tui.ErrCancelled) {
		return err
	}

	if nopts.DryRun {
		_, err := preview.WriteTo(cmd.OutOrStdout())
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent contributor summary for %s to %s.\n", subject, msg.To)
	return nil
}

// newSender picks the delivery backend. A dry run writes to preview, skips
// the enable switch and needs no credentials, but still honors the allow-list.
func newSender(settings config.MailSettings, nopts *NotifyOptions, preview *bytes.Buffer) (mail.Sender, mail.Policy, error) {
	policy := mail.Policy{
		Enabled:       settings.Enabled,
		AllowlistMode: settings.AllowlistMode,
		Allowlist:     settings.Allowlist,
		Login:         settings.Login,
		Username:      settings.Username,
		Password:      settings.Password,
		RatePerSec:    settings.RatePerSec,
	}

	if nopts.DryRun {
		policy.Enabled = true
		policy.Login = false
		return &mail.WriterSender{W: preview}, policy, nil
	}

	if settings.Enabled && settings.Server == "" {
		return nil, policy, errors.New("mail.server is not configured")
	}

	return &mail.SMTPSender{
		Addr:     settings.Server,
		StartTLS: settings.StartTLS,
		Login:    settings.Login,
		Username: settings.Username,
		Password: settings.Password,
	}, policy, nil
}
