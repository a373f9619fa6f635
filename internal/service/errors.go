package service

import "errors"

var (
	// ErrBusy is returned while another ticket run holds the browser session.
	ErrBusy = errors.New("a ticket is already being processed")
	// ErrNoPendingCall is returned when the call file holds a blank record.
	ErrNoPendingCall = errors.New("no pending call")
	// ErrInvalidCredentials is returned by a failed operator login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
