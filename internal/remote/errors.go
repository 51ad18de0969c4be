// Package remote provides the shared plumbing for calls to external APIs:
// a typed classification of transport failures and a retrying caller with
// exponential backoff. The Linear and Slack clients route every request
// through this package so that retry behavior stays uniform across them.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ErrorKind is the normalized class of a remote failure. Remote APIs report
// many failures only through message text; clients translate those messages
// into a kind once, at the transport boundary, and the rest of the code only
// ever looks at the kind.
type ErrorKind int

const (
	// KindFatal covers auth failures, malformed queries, not-found responses
	// and anything else that will not succeed on a retry.
	KindFatal ErrorKind = iota
	KindRateLimited
	KindTimeout
	KindConnReset
	KindDNS
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate limited"
	case KindTimeout:
		return "timeout"
	case KindConnReset:
		return "connection reset"
	case KindDNS:
		return "dns failure"
	default:
		return "fatal"
	}
}

// Retryable reports whether a failure of this kind is worth retrying.
func (k ErrorKind) Retryable() bool {
	return k != KindFatal
}

// Error is a remote failure annotated with the operation that produced it
// and its normalized kind.
type Error struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify wraps err into an *Error with the kind derived from the error
// itself. Typed network errors are inspected first; everything else falls
// back to matching the message text, which is all some remote APIs give us.
// Already-classified errors are returned unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var re *Error
	if errors.As(err, &re) {
		return err
	}

	return &Error{Op: op, Kind: kindOf(err), Err: err}
}

func kindOf(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindDNS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	if errors.Is(err, syscall.ECONNRESET) {
		return KindConnReset
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "ratelimited"):
		return KindRateLimited
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return KindTimeout
	case strings.Contains(msg, "connection reset"):
		return KindConnReset
	case strings.Contains(msg, "no such host"):
		return KindDNS
	default:
		return KindFatal
	}
}

// FromStatus builds the classified error for a non-2xx HTTP response.
// Only 429 is considered transient; every other status is fatal and
// propagates immediately.
func FromStatus(op string, status int, body string) error {
	kind := KindFatal
	if status == 429 {
		kind = KindRateLimited
	}

	return &Error{
		Op:   op,
		Kind: kind,
		Err:  fmt.Errorf("unexpected status %d: %s", status, strings.TrimSpace(body)),
	}
}

// Retryable reports whether err is a classified remote error with a
// retryable kind. Unclassified errors are not retryable.
func Retryable(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind.Retryable()
	}

	return false
}
