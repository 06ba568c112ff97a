package auth

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// RecoveryCodeCount is how many one-time recovery codes TOTP enrollment
// issues alongside the shared secret (spec.md §4.8).
const RecoveryCodeCount = 10

// EnrollTOTP generates a new shared secret and recovery codes for a user.
// verify-setup (VerifyTOTPSetup) must succeed before the secret is enabled.
func EnrollTOTP(accountName, issuer string) (secret string, recoveryCodes []string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", nil, err
	}

	codes := make([]string, RecoveryCodeCount)
	for i := range codes {
		codes[i], err = randomRecoveryCode()
		if err != nil {
			return "", nil, err
		}
	}

	return key.Secret(), codes, nil
}

// VerifyTOTPCode validates a 6-digit code against the enrolled secret.
func VerifyTOTPCode(secret, code string) bool {
	return totp.Validate(code, secret)
}

// ConsumeRecoveryCode reports whether code is present in codes and, if so,
// returns the remaining codes with it removed.
func ConsumeRecoveryCode(codes []string, code string) (remaining []string, ok bool) {
	for i, c := range codes {
		if c == code {
			remaining = append(append([]string{}, codes[:i]...), codes[i+1:]...)
			return remaining, true
		}
	}
	return codes, false
}

func randomRecoveryCode() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// keyURI re-exports otp.Key's URI for callers that need to render a QR
// code on enrollment, without leaking the pquerna/otp type further.
func keyURI(k *otp.Key) string { return k.String() }
