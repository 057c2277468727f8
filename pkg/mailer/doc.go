// Package mailer provides a provider-agnostic email sending interface used by
// campaign delivery.
//
// The package separates message delivery (Sender) from mailbox inspection
// (Locator, BounceChecker) so that a provider that can send but not search,
// or the other way around, can be combined freely.
//
// # Architecture
//
//   - Sender: delivers a prepared Email and returns the provider message id
//   - Locator: finds the id of an already sent message by recipient and subject
//   - BounceChecker: reports whether a sent message bounced
//   - Renderer: wraps merged body markup into an HTML layout
//   - Mailer: validates, sanitizes and renders an Email before handing it to a Sender
//
// # Usage
//
//	sender := resend.New(resend.Config{
//		APIKey:      os.Getenv("RESEND_API_KEY"),
//		SenderEmail: "team@example.com",
//		SenderName:  "Team",
//	})
//
//	m := mailer.New(sender, mailer.NewRenderer(layouts.FS), mailer.Config{
//		Layout: "base.html",
//	})
//
//	id, err := m.Send(ctx, &mailer.Email{
//		To:      []string{mailer.Address("Ann", "ann@example.com")},
//		Subject: "Hello Ann",
//		HTML:    "<p>Hi <b>Ann</b></p>",
//	})
//
// # Layouts
//
// Layouts are html/template files. The merged body is available as
// {{.Content}} and the subject as {{.Subject}}:
//
//	<html><body><h1>{{.Subject}}</h1>{{.Content}}</body></html>
//
// Parsed layouts are cached; bodies are never cached.
//
// # Message ids
//
// Providers that return an id from the send call report it directly. When
// the id is empty, callers may fall back to a Locator that searches the sent
// mailbox. Both ids feed the BounceChecker later on.
package mailer
