package service

import (
	"errors"
	"strings"
)

// Messages shown to users. Login failures never say which field was wrong.
const (
	MsgInvalidCredentials = "Invalid username/password."
	MsgUsernameTaken      = "Username already taken."
	MsgPasswordTooLong    = "Password is too long."
	MsgTitleRequired      = "You must provide a title."
	MsgBodyRequired       = "You must provide content."
)

var (
	// ErrInvalidCredentials covers blank fields, unknown users and wrong passwords alike.
	ErrInvalidCredentials = errors.New(MsgInvalidCredentials)

	// ErrPostNotFound is returned both when a post does not exist and when the caller
	// does not own it.
	ErrPostNotFound = errors.New("post not found")
)

// ValidationError carries every violated input rule, in the order they were checked.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, " ")
}

// ValidationMessages extracts the messages of a *ValidationError in err's chain.
func ValidationMessages(err error) ([]string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Messages, true
	}
	return nil, false
}
