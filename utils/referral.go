package utils

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

const referralCodePrefix = "FOX"

// GenerateReferralCode generates a referral code of the form FOX-ABC123,
// where the suffix is 6 random alphanumeric characters.
func GenerateReferralCode() (string, error) {
	// 4 random bytes give us at least 6 characters in base32
	randomBytes := make([]byte, 4)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", err
	}

	randomStr := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	randomStr = strings.ToUpper(randomStr[:6])
	randomStr = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, randomStr)

	if len(randomStr) < 6 {
		randomStr = randomStr + strings.Repeat("0", 6-len(randomStr))
	}

	return referralCodePrefix + "-" + randomStr, nil
}
