// Package mailer renders Markdown email templates with YAML front matter into
// HTML and plain text and hands the result to a Sender.
//
// A template file looks like:
//
//	---
//	subject: "Antrag für {{.Topic}} angelegt"
//	---
//	Hallo {{.Username}},
//
//	dein Antrag wurde zur Freigabe weitergeleitet.
//
// The body is a text/template executed with the message data, converted to
// HTML with goldmark (GitHub-flavoured Markdown) and wrapped in layout.html.
package mailer
