// Package notify shows deep mocks whose leaves are testify mocks.
package notify

import "errors"

// ErrNoChannel is returned when every channel fails.
var ErrNoChannel = errors.New("no channel delivered")

// Channels are the ways a notification can be delivered.
type Channels struct {
	Mail struct {
		Send func(to, body string) error
	}
	SMS struct {
		Send func(number, body string) error
	}
}

// Contact is a notification target.
type Contact struct {
	Email string
	Phone string
}

// Notify tries mail first and falls back to SMS.
func Notify(ch Channels, contact Contact, body string) error {
	if ch.Mail.Send(contact.Email, body) == nil {
		return nil
	}

	if ch.SMS.Send(contact.Phone, body) == nil {
		return nil
	}

	return ErrNoChannel
}
