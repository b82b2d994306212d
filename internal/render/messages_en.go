package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "notification.contributors.default_subject", defaultSubject)
	message.SetString(lang, "notification.contributors.title", defaultTitle)
	message.SetString(lang, "notification.contributors.body", defaultBody)
	message.SetString(lang, "notification.contributors.email_subject", defaultEmailSubject)
	message.SetString(lang, "notification.contributors.email_body", defaultEmailBody)
	message.SetString(lang, "notification.contributors.empty_body", defaultEmptyBody)
	message.SetString(lang, "notification.contributors.empty_email_subject", defaultEmptyEmailSubject)
}
