package links

import (
	"errors"
	"math/rand"
	"strings"
)

const (
	shortCodeChars  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	shortCodeLength = 7
	shortCodeRetry  = 5
)

var (
	ErrInvalidShortCode = errors.New("invalid short code format")
	ErrShortCodeTaken   = errors.New("short code already taken")
	ErrShortCodeExhaust = errors.New("failed to generate unique short code")
)

var reservedShortCodes = []string{"api", "admin", "health", "metrics", "pay", "upi", "qr"}

type CodeAvailabilityChecker interface {
	ExistsByShortCode(code string) (bool, error)
}

// GenerateShortCode returns customCode when it is valid and free, otherwise a
// random code. Random codes are retried a few times, then grown by one char.
func GenerateShortCode(customCode string, checker CodeAvailabilityChecker) (string, error) {
	if customCode != "" {
		if !isValidShortCode(customCode) {
			return "", ErrInvalidShortCode
		}

		exists, err := checker.ExistsByShortCode(customCode)
		if err != nil {
			return "", err
		}
		if exists {
			return "", ErrShortCodeTaken
		}
		return customCode, nil
	}

	for i := 0; i < shortCodeRetry; i++ {
		code := generateRandomCode(shortCodeLength)

		exists, err := checker.ExistsByShortCode(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	code := generateRandomCode(shortCodeLength + 1)
	exists, err := checker.ExistsByShortCode(code)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrShortCodeExhaust
	}
	return code, nil
}

func generateRandomCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = shortCodeChars[rand.Intn(len(shortCodeChars))]
	}
	return string(b)
}

func isValidShortCode(code string) bool {
	if len(code) < 3 || len(code) > 12 {
		return false
	}

	for _, c := range code {
		if !strings.ContainsRune(shortCodeChars, c) {
			return false
		}
	}

	for _, r := range reservedShortCodes {
		if strings.EqualFold(code, r) {
			return false
		}
	}
	return true
}
