package services

import (
	"strings"
	"testing"
	"unicode"

	"probation_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAdminPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		errMsg   string
	}{
		{"Valid", "StrongPassword123!", ""},
		{"TooShort", "Short1!", "at least 12 characters"},
		{"MissingUppercase", "lowercase123!", "uppercase"},
		{"MissingLowercase", "UPPERCASE123!", "lowercase"},
		{"MissingNumber", "NoNumberPass!", "number"},
		{"MissingSymbol", "NoSpecialChar123", "symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminPassword(tt.password)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.False(t, strings.HasSuffix(err.Error(), "."))
			assert.True(t, unicode.IsLower([]rune(err.Error())[0]))
		})
	}
}

func TestCreateUserAdminPasswordPolicy(t *testing.T) {
	db := setupTestDB(t)

	_, err := CreateUser(db, NewUserInput{Username: "chief", Email: "chief@probation.gov", Password: "password123", Role: models.RoleAdmin})
	verr, ok := AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "password")

	// the same password is fine for an officer
	_, err = CreateUser(db, NewUserInput{Username: "po", Email: "po@probation.gov", Password: "password123", Role: models.RoleOfficer})
	assert.NoError(t, err)
}
