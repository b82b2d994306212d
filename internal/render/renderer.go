// Package render turns formatted contributor rows into notification copy.
package render

import (
	"fmt"
	"strings"

	"github.com/spiffcs/contribs/internal/format"
	"golang.org/x/text/message"
)

const (
	defaultSubject           = "this project"
	defaultTitle             = "Contributors to %s"
	defaultBody              = "%s contributed to %s."
	defaultEmailSubject      = "Contributor summary for %s"
	defaultEmailBody         = "Hello,\n\n%s contributed to %s.\n"
	defaultEmptyBody         = "No contributors to %s yet."
	defaultEmptyEmailSubject = "No contributors for %s"
)

// Channel identifies where rendered copy is delivered.
type Channel string

const (
	// ChannelInApp renders a single line for terminals and chat.
	ChannelInApp Channel = "in_app"
	// ChannelEmail renders copy for email delivery.
	ChannelEmail Channel = "email"
)

// Input is one render request.
type Input struct {
	// Subject names what was contributed to, usually a repository.
	Subject string
	Rows    []format.DisplayRow
	Channel Channel
}

// Output is localized copy for one contributor summary.
type Output struct {
	Title        string
	BodyText     string
	EmailSubject string
}

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Render returns localized copy describing the given rows.
// Rows are taken as-is; the caller is responsible for applying the cap.
func Render(loc Localizer, input Input) Output {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		subject = localizeWithFallback(loc, "notification.contributors.default_subject", defaultSubject)
	}

	names := JoinLabels(input.Rows)
	if names == "" {
		return emptyOutput(loc, subject)
	}

	title := localizef(loc, "notification.contributors.title", defaultTitle, subject)

	var body string
	if input.Channel == ChannelEmail {
		body = localizef(loc, "notification.contributors.email_body", defaultEmailBody, names, subject)
	} else {
		body = localizef(loc, "notification.contributors.body", defaultBody, names, subject)
	}

	return Output{
		Title:        title,
		BodyText:     body,
		EmailSubject: localizef(loc, "notification.contributors.email_subject", defaultEmailSubject, subject),
	}
}

func emptyOutput(loc Localizer, subject string) Output {
	return Output{
		Title:        localizef(loc, "notification.contributors.title", defaultTitle, subject),
		BodyText:     localizef(loc, "notification.contributors.empty_body", defaultEmptyBody, subject),
		EmailSubject: localizef(loc, "notification.contributors.empty_email_subject", defaultEmptyEmailSubject, subject),
	}
}

// JoinLabels joins row labels into an English list with a serial comma:
// "A", "A and B", "A, B, and 7 others".
func JoinLabels(rows []format.DisplayRow) string {
	labels := make([]string, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.Label)
	}

	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	case 2:
		return labels[0] + " and " + labels[1]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + ", and " + labels[len(labels)-1]
	}
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}

// localizef falls back to the English template when the catalog has no entry.
// A printer formats an unknown key as its own template, so a result starting
// with the key means the lookup missed.
func localizef(loc Localizer, key string, fallback string, args ...any) string {
	value := strings.TrimSpace(localize(loc, key, args...))
	if value == "" || strings.HasPrefix(value, key) {
		return strings.TrimSpace(fmt.Sprintf(fallback, args...))
	}
	return value
}

func localizeWithFallback(loc Localizer, key string, fallback string) string {
	value := strings.TrimSpace(localize(loc, key))
	if value == "" || value == key {
		return fallback
	}
	return value
}
