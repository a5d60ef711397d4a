// Package notify sends the welcome and cancellation mails that follow
// account creation and deletion.
package notify
