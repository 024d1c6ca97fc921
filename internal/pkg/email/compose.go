package email

import "net/url"

const gmailComposeBase = "https://mail.google.com/mail/"

// GmailComposeURL builds a link that opens Gmail's compose window pre-filled
// with the recipient, subject and body. Nothing is sent by the service.
func GmailComposeURL(to, subject, body string) string {
	q := url.Values{}
	q.Set("view", "cm")
	q.Set("fs", "1")
	q.Set("to", to)
	q.Set("su", subject)
	q.Set("body", body)
	return gmailComposeBase + "?" + q.Encode()
}
