package render

import (
	"fmt"
	"testing"

	"github.com/spiffcs/contribs/internal/format"
	"github.com/spiffcs/contribs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func rows(t *testing.T, names []string, maxShown int) []format.DisplayRow {
	t.Helper()
	cs := make([]model.Contributor, len(names))
	for i, n := range names {
		cs[i] = model.Contributor{ID: fmt.Sprintf("u%d", i), Name: n, Active: true}
	}
	out, err := format.Contributors(cs, maxShown)
	require.NoError(t, err)
	return out
}

func TestJoinLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		names    []string
		maxShown int
		want     string
	}{
		{"empty", nil, 3, ""},
		{"one", []string{"Ada"}, 3, "Ada"},
		{"two", []string{"Ada", "Grace"}, 3, "Ada and Grace"},
		{"three", []string{"Ada", "Grace", "Linus"}, 3, "Ada, Grace, and Linus"},
		{"relaxed to four", []string{"Ada", "Grace", "Linus", "Ken"}, 3, "Ada, Grace, Linus, and Ken"},
		{"collapsed", []string{"Ada", "Grace", "Linus", "Ken", "Rob"}, 3, "Ada, Grace, Linus, and 2 others"},
		{"cap zero", []string{"Ada", "Grace", "Linus"}, 0, "3 others"},
		{"cap one", []string{"Ada", "Grace", "Linus"}, 1, "Ada and 2 others"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinLabels(rows(t, tt.names, tt.maxShown)))
		})
	}
}

func TestRenderInAppWithPrinter(t *testing.T) {
	t.Parallel()

	printer := message.NewPrinter(language.English)
	out := Render(printer, Input{
		Subject: "spiffcs/contribs",
		Rows:    rows(t, []string{"Ada", "Grace", "Linus", "Ken", "Rob", "Ritchie"}, 2),
		Channel: ChannelInApp,
	})

	assert.Equal(t, "Contributors to spiffcs/contribs", out.Title)
	assert.Equal(t, "Ada, Grace, and 4 others contributed to spiffcs/contribs.", out.BodyText)
	assert.Equal(t, "Contributor summary for spiffcs/contribs", out.EmailSubject)
}

func TestRenderEmailLocalized(t *testing.T) {
	t.Parallel()

	loc := fakeLocalizer{values: map[string]string{
		"notification.contributors.title":         "Contribuidores de %s",
		"notification.contributors.email_subject": "Resumo de contribuidores de %s",
		"notification.contributors.email_body":    "Ola,\n\n%s contribuiram para %s.",
	}}

	out := Render(loc, Input{
		Subject: "osf",
		Rows:    rows(t, []string{"Ada", "Grace"}, 3),
		Channel: ChannelEmail,
	})

	assert.Equal(t, "Contribuidores de osf", out.Title)
	assert.Equal(t, "Ola,\n\nAda and Grace contribuiram para osf.", out.BodyText)
	assert.Equal(t, "Resumo de contribuidores de osf", out.EmailSubject)
}

func TestRenderFallsBackWhenCatalogMissing(t *testing.T) {
	t.Parallel()

	out := Render(fakeLocalizer{}, Input{
		Subject: "osf",
		Rows:    rows(t, []string{"Ada"}, 3),
		Channel: ChannelEmail,
	})

	assert.Equal(t, "Contributors to osf", out.Title)
	assert.Equal(t, "Hello,\n\nAda contributed to osf.", out.BodyText)
}

func TestRenderNilLocalizer(t *testing.T) {
	t.Parallel()

	out := Render(nil, Input{Rows: rows(t, []string{"Ada"}, 3)})

	assert.Equal(t, "Contributors to this project", out.Title)
	assert.Equal(t, "Ada contributed to this project.", out.BodyText)
}

func TestRenderEmptyRows(t *testing.T) {
	t.Parallel()

	out := Render(message.NewPrinter(language.English), Input{Subject: "osf", Channel: ChannelEmail})

	assert.Equal(t, "No contributors to osf yet.", out.BodyText)
	assert.Equal(t, "No contributors for osf", out.EmailSubject)
}

type fakeLocalizer struct {
	values map[string]string
}

func (f fakeLocalizer) Sprintf(key message.Reference, args ...any) string {
	asString, ok := key.(string)
	if !ok {
		return ""
	}
	template := f.values[asString]
	if template == "" {
		return asString
	}
	return fmt.Sprintf(template, args...)
}
