package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	tokenBytes        = 32
	minPasswordLength = 8
)

// NewToken returns a random URL-safe token, used for CSRF form fields.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func TokensEqual(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}

// CheckPassword enforces the minimum length of a password typed in the UI
// before it is sent to the backend, which does the hashing.
func CheckPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return errors.New("la contraseña es obligatoria")
	}
	if len([]rune(password)) < minPasswordLength {
		return fmt.Errorf("la contraseña debe tener al menos %d caracteres", minPasswordLength)
	}
	return nil
}

// CheckNewPassword is CheckPassword plus the confirmation field of the
// reset form.
func CheckNewPassword(password, confirmation string) error {
	if err := CheckPassword(password); err != nil {
		return err
	}
	if password != confirmation {
		return errors.New("las contraseñas no coinciden")
	}
	return nil
}
