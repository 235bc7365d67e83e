package services

import (
	"regexp"

	"github.com/pquerna/otp/totp"
)

var mfaCodePattern = regexp.MustCompile(`^\d{6}$`)

// CodeVerifier checks a second-factor code against the user's MFA secret.
// Both implementations enforce the six-digit format contract before
// anything else.
type CodeVerifier interface {
	Verify(secret, code string) bool
}

// StaticVerifier accepts any well-formed six-digit code. It is a
// placeholder for environments without real TOTP enrolment, not a
// security mechanism.
type StaticVerifier struct{}

func (StaticVerifier) Verify(secret, code string) bool {
	return mfaCodePattern.MatchString(code)
}

// TOTPVerifier validates codes against the user's base32 TOTP secret.
type TOTPVerifier struct{}

func (TOTPVerifier) Verify(secret, code string) bool {
	if !mfaCodePattern.MatchString(code) {
		return false
	}
	return totp.Validate(code, secret)
}

// NewCodeVerifier selects the verifier by mode ("totp" or anything else
// for the static placeholder).
func NewCodeVerifier(mode string) CodeVerifier {
	if mode == "totp" {
		return TOTPVerifier{}
	}
	return StaticVerifier{}
}
