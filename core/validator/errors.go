package validator

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	errs "github.com/kochabx/webpush/errors"
)

// validationErrorsImpl 校验错误实现
type validationErrorsImpl struct {
	fieldErrors []FieldError
	message     string
}

// Error 返回错误信息
func (ve *validationErrorsImpl) Error() string {
	return ve.message
}

// Errors 返回错误列表
func (ve *validationErrorsImpl) Errors() []FieldError {
	return ve.fieldErrors
}

// HasErrors 是否有错误
func (ve *validationErrorsImpl) HasErrors() bool {
	return len(ve.fieldErrors) > 0
}

// fieldErrorImpl 字段错误实现
type fieldErrorImpl struct {
	fieldError  validator.FieldError
	message     string
	translators map[string]ut.Translator
}

// Field 字段名
func (fe *fieldErrorImpl) Field() string {
	return fe.fieldError.Field()
}

// Tag 校验标签
func (fe *fieldErrorImpl) Tag() string {
	return fe.fieldError.Tag()
}

// Value 字段值
func (fe *fieldErrorImpl) Value() any {
	return fe.fieldError.Value()
}

// Message 错误消息
func (fe *fieldErrorImpl) Message() string {
	return fe.message
}

// Translate 翻译错误消息
func (fe *fieldErrorImpl) Translate(lang string) string {
	if trans, exists := fe.translators[lang]; exists {
		return fe.fieldError.Translate(trans)
	}
	return fe.message
}

// ValidationResult 校验结果
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError 校验错误详情
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// ToValidationResult 将错误转换为校验结果
func ToValidationResult(err error) *ValidationResult {
	if err == nil {
		return &ValidationResult{Valid: true}
	}

	result := &ValidationResult{Valid: false}

	if validationErr, ok := err.(ValidationErrors); ok {
		for _, fieldErr := range validationErr.Errors() {
			result.Errors = append(result.Errors, ValidationError{
				Field:   fieldErr.Field(),
				Tag:     fieldErr.Tag(),
				Value:   fieldErr.Value(),
				Message: fieldErr.Message(),
			})
		}
	}

	return result
}

// GetFieldErrorMessage 获取指定字段的错误消息
func GetFieldErrorMessage(err error, field string) string {
	if validationErr, ok := err.(ValidationErrors); ok {
		for _, fieldErr := range validationErr.Errors() {
			if fieldErr.Field() == field {
				return fieldErr.Message()
			}
		}
	}
	return ""
}

// HasFieldError 检查是否存在指定字段的错误
func HasFieldError(err error, field string) bool {
	if validationErr, ok := err.(ValidationErrors); ok {
		for _, fieldErr := range validationErr.Errors() {
			if fieldErr.Field() == field {
				return true
			}
		}
	}
	return false
}

// ToError 将校验错误转换为 PRECONDITION 错误，metadata 中记录 字段 -> 标签
func ToError(err error) error {
	if err == nil {
		return nil
	}

	validationErr, ok := err.(ValidationErrors)
	if !ok {
		return err
	}

	metadata := make(map[string]string, len(validationErr.Errors()))
	for _, fieldErr := range validationErr.Errors() {
		metadata[fieldErr.Field()] = fieldErr.Tag()
	}
	return errs.Precondition("%s", validationErr.Error()).WithMetadata(metadata)
}

// IsValidationError 检查是否为校验错误
func IsValidationError(err error) bool {
	_, ok := err.(ValidationErrors)
	return ok
}
