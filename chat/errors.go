package chat

import (
	"errors"
	"fmt"
)

// Kind classifies where in the pipeline an external call failed.
type Kind string

const (
	KindPersist      Kind = "PERSIST_FAILURE"
	KindSubscription Kind = "SUBSCRIPTION_FAILURE"
	KindUpstream     Kind = "UPSTREAM_FAILURE"
)

type Error struct {
	Kind  Kind
	Op    string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Op)
}

func (e *Error) Unwrap() error { return e.Cause }

func PersistError(op string, cause error) error {
	return &Error{Kind: KindPersist, Op: op, Cause: cause}
}

func SubscriptionError(op string, cause error) error {
	return &Error{Kind: KindSubscription, Op: op, Cause: cause}
}

func UpstreamError(op string, cause error) error {
	return &Error{Kind: KindUpstream, Op: op, Cause: cause}
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsPersist(err error) bool      { return kindOf(err) == KindPersist }
func IsSubscription(err error) bool { return kindOf(err) == KindSubscription }
func IsUpstream(err error) bool     { return kindOf(err) == KindUpstream }
