package core

import (
	"fmt"

	"golang.org/x/xerrors"
)

// ErrorKind classifies the ways a contract call can be rejected. The numeric
// values travel over the wire in enclave replies, so they must not be
// reordered.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInvalidArgument
	KindIndexOutOfRange
	KindOptionNotFound
	KindOptionHasVotes
	KindPollClosed
	KindNotAMember
	KindVoteLimitExceeded
	KindUnauthorized
	KindStateCorrupt
	KindPollFinalized
	KindDuplicateOption
	KindAlreadyVoted
	KindPollExists
	KindPollNotCreated
)

var kindNames = map[ErrorKind]string{
	KindUnknown:           "Unknown",
	KindInvalidArgument:   "InvalidArgument",
	KindIndexOutOfRange:   "IndexOutOfRange",
	KindOptionNotFound:    "OptionNotFound",
	KindOptionHasVotes:    "OptionHasVotes",
	KindPollClosed:        "PollClosed",
	KindNotAMember:        "NotAMember",
	KindVoteLimitExceeded: "VoteLimitExceeded",
	KindUnauthorized:      "Unauthorized",
	KindStateCorrupt:      "StateCorrupt",
	KindPollFinalized:     "PollFinalized",
	KindDuplicateOption:   "DuplicateOption",
	KindAlreadyVoted:      "AlreadyVoted",
	KindPollExists:        "PollExists",
	KindPollNotCreated:    "PollNotCreated",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Fatal reports whether an error of this kind means the contract instance
// can no longer be trusted, as opposed to a rejected request.
func (k ErrorKind) Fatal() bool {
	return k == KindStateCorrupt
}

// Error is the typed error returned by every contract operation.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

// Is matches any error of the same kind when the target carries no message,
// which is how the Err* sentinels below are meant to be used.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Msg == "" {
		return t.Kind == e.Kind
	}
	return t.Kind == e.Kind && t.Msg == e.Msg
}

var (
	ErrInvalidArgument   = &Error{Kind: KindInvalidArgument}
	ErrIndexOutOfRange   = &Error{Kind: KindIndexOutOfRange}
	ErrOptionNotFound    = &Error{Kind: KindOptionNotFound}
	ErrOptionHasVotes    = &Error{Kind: KindOptionHasVotes}
	ErrPollClosed        = &Error{Kind: KindPollClosed}
	ErrNotAMember        = &Error{Kind: KindNotAMember}
	ErrVoteLimitExceeded = &Error{Kind: KindVoteLimitExceeded}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrStateCorrupt      = &Error{Kind: KindStateCorrupt}
	ErrPollFinalized     = &Error{Kind: KindPollFinalized}
	ErrDuplicateOption   = &Error{Kind: KindDuplicateOption}
	ErrAlreadyVoted      = &Error{Kind: KindAlreadyVoted}
	ErrPollExists        = &Error{Kind: KindPollExists}
	ErrPollNotCreated    = &Error{Kind: KindPollNotCreated}
)

// Errorf builds a typed error of the given kind.
func Errorf(kind ErrorKind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a typed error anywhere in err's chain, or
// KindUnknown for untyped errors and nil.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if xerrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
