package services

import (
	"errors"
	"fmt"
	"unicode"
)

// AdminPasswordLength is the minimum for administrator accounts
const AdminPasswordLength = 12

// ValidateAdminPassword applies the stricter administrator policy: at least
// AdminPasswordLength characters mixing upper and lower case, digits and
// symbols
func ValidateAdminPassword(password string) error {
	if len(password) < AdminPasswordLength {
		return fmt.Errorf("administrator passwords must be at least %d characters", AdminPasswordLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return errors.New("password must contain an uppercase letter")
	case !hasLower:
		return errors.New("password must contain a lowercase letter")
	case !hasNumber:
		return errors.New("password must contain a number")
	case !hasSpecial:
		return errors.New("password must contain a symbol")
	}
	return nil
}
