package user

import (
	"fmt"
	"unicode"
)

const (
	MinLoginLen        = 3
	MaxLoginLen        = 32
	MinPasswordLen     = 8
	MaxBusinessNameLen = 128
)

// Validator - валидация данных продавца при регистрации и входе
type Validator interface {
	ValidateRegister(login, password, businessName string) error
	ValidateLogin(login string) error
	ValidatePassword(password string) error
}

type charClass struct {
	name string
	is   func(rune) bool
}

type PasswordValidator struct {
	required []charClass
}

// NewPasswordValidator создает валидатор с обязательными классами символов
func NewPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		required: []charClass{
			{"lowercase letter", unicode.IsLower},
			{"uppercase letter", unicode.IsUpper},
			{"digit", unicode.IsDigit},
			{"special character", func(r rune) bool {
				return unicode.IsPunct(r) || unicode.IsSymbol(r)
			}},
		},
	}
}

// ValidateRegister валидирует логин, пароль и название бизнеса
func (v *PasswordValidator) ValidateRegister(login, password, businessName string) error {
	if err := v.ValidateLogin(login); err != nil {
		return fmt.Errorf("login validation failed: %w", err)
	}
	if err := v.ValidatePassword(password); err != nil {
		return fmt.Errorf("password validation failed: %w", err)
	}
	if businessName == "" {
		return fmt.Errorf("business name is required")
	}
	if len(businessName) > MaxBusinessNameLen {
		return fmt.Errorf("business name must be at most %d characters", MaxBusinessNameLen)
	}
	return nil
}

// ValidateLogin валидирует логин
func (v *PasswordValidator) ValidateLogin(login string) error {
	if len(login) < MinLoginLen {
		return fmt.Errorf("login must be at least %d characters", MinLoginLen)
	}
	if len(login) > MaxLoginLen {
		return fmt.Errorf("login must be at most %d characters", MaxLoginLen)
	}
	for _, r := range login {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.' {
			return fmt.Errorf("login can only contain letters, digits, '_', '-', '.'")
		}
	}
	return nil
}

// ValidatePassword проверяет длину и наличие всех обязательных классов символов
func (v *PasswordValidator) ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}

	for _, class := range v.required {
		found := false
		for _, r := range password {
			if class.is(r) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("password must contain at least one %s", class.name)
		}
	}
	return nil
}
