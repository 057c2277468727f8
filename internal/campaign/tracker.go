package campaign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/mergeflow/pkg/mailer"
	"github.com/dmitrymomot/mergeflow/pkg/merge"
	"github.com/dmitrymomot/mergeflow/pkg/recipient"
	"github.com/dmitrymomot/mergeflow/pkg/sheet"
	"github.com/dmitrymomot/mergeflow/pkg/template"
)

// Tracker sends messages to pending recipients and advances their
// delivery status: pending to sent or failed, and sent to bounced.
type Tracker struct {
	recipients sheet.Store
	templates  template.Store
	artifacts  ArtifactStore
	sender     mailer.Sender
	opts       *options
	cfg        Config
}

// NewTracker builds a tracker. artifacts may be nil when PDFs are never
// attached, and sender may be nil when nothing is sent.
func NewTracker(cfg Config, recipients sheet.Store, templates template.Store, artifacts ArtifactStore, sender mailer.Sender, opts ...Option) *Tracker {
	return &Tracker{
		recipients: recipients,
		templates:  templates,
		artifacts:  artifacts,
		sender:     sender,
		opts:       newOptions(opts),
		cfg:        cfg.WithDefaults(),
	}
}

// SendPending sends one message to every addressable recipient in the
// pending state, waiting SendDelay between consecutive sends.
func (t *Tracker) SendPending(ctx context.Context) (*Run, error) {
	ctx, b := t.opts.begin(ctx, OpSend)

	if t.sender == nil {
		b.finish(ctx, ErrNoSender)
		return b.run, ErrNoSender
	}

	tmpl, err := t.templates.Load(ctx, t.cfg.Template)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrTemplateRead, t.cfg.Template, err)
		b.finish(ctx, err)
		return b.run, err
	}
	table, err := t.load(ctx)
	if err != nil {
		b.finish(ctx, err)
		return b.run, err
	}

	subject := t.cfg.Subject
	if subject == "" {
		subject = tmpl.Subject
	}
	if subject == "" {
		subject = tmpl.Title()
	}
	body := tmpl.Document.Markup()

	for _, r := range table.Addressable() {
		if r.Status() != recipient.StatusPending {
			continue
		}
		if b.run.Total > 0 {
			if err := t.opts.sleep(ctx, t.cfg.SendDelay); err != nil {
				b.finish(ctx, err)
				return b.run, err
			}
		}
		if err := ctx.Err(); err != nil {
			b.finish(ctx, err)
			return b.run, err
		}

		b.run.Total++
		if err := checkEmail(r); err != nil {
			b.fail(ctx, r, err)
			continue
		}
		messageID, err := t.send(ctx, tmpl, r, merge.Markup(subject, r), merge.HTML(body, r))
		if err != nil {
			b.fail(ctx, r, err)
			continue
		}
		b.succeed(ctx, r, messageID)
	}

	b.finish(ctx, nil)
	return b.run, nil
}

func (t *Tracker) send(ctx context.Context, tmpl *template.Template, r *recipient.Record, subject, body string) (string, error) {
	email := &mailer.Email{
		To:      []string{r.Email()},
		Subject: subject,
		HTML:    body,
		Tags:    map[string]string{"campaign": tmpl.ID},
	}

	if t.cfg.AttachPDF && r.PdfID() != "" {
		att, err := t.attachment(ctx, tmpl, r)
		if err != nil {
			return "", err
		}
		email.Attachments = append(email.Attachments, att)
	}

	sentAt := t.opts.now()
	messageID, err := t.sender.Send(ctx, email)
	if err != nil {
		sendErr := errors.Join(ErrTransport, err)
		if werr := setField(ctx, t.recipients, r, recipient.FieldStatus, string(recipient.StatusFailed)); werr != nil {
			return "", errors.Join(sendErr, werr)
		}
		return "", sendErr
	}

	if err := setField(ctx, t.recipients, r, recipient.FieldStatus, string(recipient.StatusSent)); err != nil {
		return messageID, err
	}

	if messageID == "" {
		messageID = t.locate(ctx, r.Email(), subject, sentAt.Add(-t.cfg.LocateWindow))
	}
	if messageID != "" {
		if err := setField(ctx, t.recipients, r, recipient.FieldMessageID, messageID); err != nil {
			t.opts.logger.WarnContext(ctx, "failed to record message id",
				slog.Int("row", r.Row), slog.Any("error", err))
		}
	}
	return messageID, nil
}

func (t *Tracker) attachment(ctx context.Context, tmpl *template.Template, r *recipient.Record) (mailer.Attachment, error) {
	if t.artifacts == nil {
		return mailer.Attachment{}, fmt.Errorf("%w: no artifact store for attachments", ErrArtifactStore)
	}
	pdf, err := t.artifacts.Get(ctx, r.PdfID())
	if err != nil {
		return mailer.Attachment{}, errors.Join(ErrArtifactStore, err)
	}
	name := ArtifactName(t.cfg.NameTemplate, tmpl.Title(), r)
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return mailer.Attachment{Filename: name, ContentType: ContentTypePDF, Content: pdf}, nil
}

// locate searches sent mail for the message. Lookup failures are logged
// and leave the id empty.
func (t *Tracker) locate(ctx context.Context, to, subject string, since time.Time) string {
	if t.opts.locator == nil {
		return ""
	}
	id, err := t.opts.locator.LocateSent(ctx, to, subject, since)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, mailer.ErrMessageNotFound) {
			level = slog.LevelInfo
		}
		t.opts.logger.Log(ctx, level, "sent message not located",
			slog.String("to", to), slog.Any("error", err))
		return ""
	}
	return id
}

// PollBounces marks sent recipients as bounced when a delivery failure
// notice arrived in their message thread. Sent recipients without a
// message id get one more sent-mail lookup first.
func (t *Tracker) PollBounces(ctx context.Context) (*Run, error) {
	ctx, b := t.opts.begin(ctx, OpPollBounces)

	if t.opts.bounces == nil {
		b.finish(ctx, ErrNoBounceChecker)
		return b.run, ErrNoBounceChecker
	}

	table, err := t.load(ctx)
	if err != nil {
		b.finish(ctx, err)
		return b.run, err
	}

	var subject string
	if t.opts.locator != nil {
		subject, err = t.subject(ctx)
		if err != nil {
			b.finish(ctx, err)
			return b.run, err
		}
	}

	for _, r := range table.Addressable() {
		if r.Status() != recipient.StatusSent {
			continue
		}
		if err := ctx.Err(); err != nil {
			b.finish(ctx, err)
			return b.run, err
		}
		b.run.Total++

		messageID := r.MessageID()
		if messageID == "" && subject != "" {
			since := t.opts.now().Add(-t.cfg.BounceLookback)
			messageID = t.locate(ctx, r.Email(), merge.Markup(subject, r), since)
			if messageID != "" {
				if err := setField(ctx, t.recipients, r, recipient.FieldMessageID, messageID); err != nil {
					b.fail(ctx, r, err)
					continue
				}
			}
		}
		if messageID == "" {
			b.skip(ctx, r, "no message id")
			continue
		}

		bounced, err := t.opts.bounces.Bounced(ctx, messageID)
		if err != nil {
			b.fail(ctx, r, errors.Join(ErrTransport, err))
			continue
		}
		if !bounced {
			b.skip(ctx, r, "delivered")
			continue
		}
		if err := setField(ctx, t.recipients, r, recipient.FieldStatus, string(recipient.StatusBounced)); err != nil {
			b.fail(ctx, r, err)
			continue
		}
		b.succeed(ctx, r, "bounced")
	}

	b.finish(ctx, nil)
	return b.run, nil
}

// ResetStatus puts recipients back to pending and clears their message id.
// Empty rows selects every recipient; empty statuses selects sent, failed
// and bounced.
func (t *Tracker) ResetStatus(ctx context.Context, rows []int, statuses ...recipient.Status) (*Run, error) {
	ctx, b := t.opts.begin(ctx, OpResetStatus)

	if len(statuses) == 0 {
		statuses = []recipient.Status{recipient.StatusSent, recipient.StatusFailed, recipient.StatusBounced}
	}

	table, err := t.load(ctx)
	if err != nil {
		b.finish(ctx, err)
		return b.run, err
	}

	for _, r := range table.Addressable() {
		if len(rows) > 0 && !slices.Contains(rows, r.Row) {
			continue
		}
		if !slices.Contains(statuses, r.Status()) {
			continue
		}
		b.run.Total++

		if err := setField(ctx, t.recipients, r, recipient.FieldStatus, string(recipient.StatusPending)); err != nil {
			b.fail(ctx, r, err)
			continue
		}
		if r.MessageID() != "" {
			if err := setField(ctx, t.recipients, r, recipient.FieldMessageID, ""); err != nil {
				b.fail(ctx, r, err)
				continue
			}
		}
		b.succeed(ctx, r, "reset to pending")
	}

	b.finish(ctx, nil)
	return b.run, nil
}

func (t *Tracker) subject(ctx context.Context) (string, error) {
	if t.cfg.Subject != "" {
		return t.cfg.Subject, nil
	}
	tmpl, err := t.templates.Load(ctx, t.cfg.Template)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTemplateRead, t.cfg.Template, err)
	}
	if tmpl.Subject != "" {
		return tmpl.Subject, nil
	}
	return tmpl.Title(), nil
}

func (t *Tracker) load(ctx context.Context) (*sheet.Table, error) {
	if err := t.recipients.EnsureColumns(ctx, recipient.ReservedColumns...); err != nil {
		return nil, errors.Join(ErrRecipientsRead, err)
	}
	table, err := t.recipients.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrRecipientsRead, err)
	}
	return table, nil
}
