package services

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
)

func TestStaticVerifier_FormatOnly(t *testing.T) {
	verifier := StaticVerifier{}

	assert.True(t, verifier.Verify("", "123456"))
	assert.True(t, verifier.Verify("ignored", "000000"))

	assert.False(t, verifier.Verify("", "12345"))
	assert.False(t, verifier.Verify("", "1234567"))
	assert.False(t, verifier.Verify("", "12345a"))
	assert.False(t, verifier.Verify("", ""))
}

func TestTOTPVerifier_ValidatesAgainstSecret(t *testing.T) {
	verifier := TOTPVerifier{}
	secret := "JBSWY3DPEHPK3PXP"

	code, err := totp.GenerateCode(secret, time.Now())
	assert.NoError(t, err)

	assert.True(t, verifier.Verify(secret, code))
	assert.False(t, verifier.Verify("NB2W45DFOIZA====", code))
	assert.False(t, verifier.Verify(secret, "12345a"))
}

func TestNewCodeVerifier_ModeSelection(t *testing.T) {
	assert.IsType(t, TOTPVerifier{}, NewCodeVerifier("totp"))
	assert.IsType(t, StaticVerifier{}, NewCodeVerifier("static"))
	assert.IsType(t, StaticVerifier{}, NewCodeVerifier(""))
}
