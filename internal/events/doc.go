// Package events lets services announce account lifecycle changes without
// knowing who reacts to them. The user service emits AccountEvents; the mail
// notifier is registered as a handler at startup.
package events
