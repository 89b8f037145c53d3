package game

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// 用户信息约束
const (
	MaxUserIDLength = 12
	MinUserAge      = 6
	MaxUserAge      = 14
)

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists 用户 ID 已被占用
	ErrUserExists = errors.New("user already exists")
)

// ValidationError 用户输入校验错误，Message 可直接展示给玩家
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateUserID 校验用户 ID：非空、仅数字、最多 12 位
func ValidateUserID(id string) error {
	if id == "" {
		return &ValidationError{Field: "userID", Message: "Por favor, ingresa una TI válida."}
	}
	if len(id) > MaxUserIDLength {
		return &ValidationError{Field: "userID", Message: fmt.Sprintf("La TI debe tener máximo %d números.", MaxUserIDLength)}
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return &ValidationError{Field: "userID", Message: "La TI debe contener solo números."}
		}
	}
	return nil
}

// ValidateUserName 校验用户名：非空，只能包含字母和空格
func ValidateUserName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "userName", Message: "Por favor, ingresa un nombre válido."}
	}
	for _, c := range name {
		if !unicode.IsLetter(c) && c != ' ' {
			return &ValidationError{Field: "userName", Message: "El nombre solo puede contener letras y espacios."}
		}
	}
	return nil
}

// ValidateUserSex 校验性别：非空
func ValidateUserSex(sex string) error {
	if strings.TrimSpace(sex) == "" {
		return &ValidationError{Field: "sexo", Message: "Por favor, ingresa el sexo (Masculino/Femenino)."}
	}
	return nil
}

// ValidateUserAge 校验年龄：6 ~ 14 岁
func ValidateUserAge(age int) error {
	if age < MinUserAge || age > MaxUserAge {
		return &ValidationError{
			Field:   "edad",
			Message: fmt.Sprintf("Por favor, ingresa una edad entre %d y %d años.", MinUserAge, MaxUserAge),
		}
	}
	return nil
}

// validateUser 依次校验注册所需的全部字段
func validateUser(id, name, sex string, age int) error {
	if err := ValidateUserID(id); err != nil {
		return err
	}
	if err := ValidateUserName(name); err != nil {
		return err
	}
	if err := ValidateUserSex(sex); err != nil {
		return err
	}
	return ValidateUserAge(age)
}
