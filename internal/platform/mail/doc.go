// Package mail delivers transactional email. SendGridSender talks to the
// SendGrid v3 API; LogSender only records that a message would have been sent.
package mail
