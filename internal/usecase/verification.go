package usecase

import "time"

// CodeDecision is the outcome of checking a submitted verification code
// against the code stored on a pending account.
type CodeDecision int

const (
	// CodeAccepted means the submitted code matches and the window is still open.
	CodeAccepted CodeDecision = iota

	// CodeMismatch means the submitted code differs from the stored one,
	// regardless of expiry.
	CodeMismatch

	// CodeExpired means the codes match but the verification window has lapsed.
	CodeExpired
)

// EvaluateCode decides whether a submitted verification code is acceptable
// at the given instant. It is a pure function over account state; persisting
// the verified flag on acceptance is the caller's responsibility.
func EvaluateCode(stored string, expiresAt time.Time, submitted string, now time.Time) CodeDecision {
	if submitted != stored {
		return CodeMismatch
	}
	if !now.Before(expiresAt) {
		return CodeExpired
	}
	return CodeAccepted
}
