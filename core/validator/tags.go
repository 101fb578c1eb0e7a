package validator

import (
	"net/url"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// Web Push 相关的自定义标签
const (
	// TagTopic Topic 头：最多 32 个 base64url 字符
	TagTopic = "topic"
	// TagUrgency Urgency 头：very-low / low / normal / high
	TagUrgency = "urgency"
	// TagVAPIDSubject VAPID sub 声明：mailto: 或 https: URI
	TagVAPIDSubject = "vapidsub"
)

// MaxTopicLength Topic 最大长度
const MaxTopicLength = 32

var topicPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// Urgencies 合法的 Urgency 取值（由低到高）
var Urgencies = []string{"very-low", "low", "normal", "high"}

// IsTopic 校验 Topic
func IsTopic(s string) bool {
	return topicPattern.MatchString(s)
}

// IsUrgency 校验 Urgency
func IsUrgency(s string) bool {
	for _, u := range Urgencies {
		if s == u {
			return true
		}
	}
	return false
}

// IsVAPIDSubject 校验 VAPID subject
func IsVAPIDSubject(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "mailto":
		return u.Opaque != "" && strings.Contains(u.Opaque, "@")
	case "https":
		return u.Host != ""
	}
	return false
}

type customTag struct {
	tag string
	fn  func(string) bool
	en  string
	zh  string
}

var customTags = []customTag{
	{TagTopic, IsTopic, "{0} must be at most 32 URL-safe base64 characters", "{0}必须是不超过32个URL安全的base64字符"},
	{TagUrgency, IsUrgency, "{0} must be one of very-low, low, normal or high", "{0}必须是very-low、low、normal或high之一"},
	{TagVAPIDSubject, IsVAPIDSubject, "{0} must be a mailto: or https: URI", "{0}必须是mailto:或https: URI"},
}

// registerCustomTags 注册自定义标签
func (v *validatorImpl) registerCustomTags() {
	for _, ct := range customTags {
		fn := ct.fn
		_ = v.validator.RegisterValidation(ct.tag, func(fl validator.FieldLevel) bool {
			return fn(fl.Field().String())
		})
	}
}

// registerCustomTranslations 注册自定义标签的翻译
func (v *validatorImpl) registerCustomTranslations(lang string, trans ut.Translator) {
	for _, ct := range customTags {
		text := ct.en
		if lang == "zh" {
			text = ct.zh
		}
		tag := ct.tag
		_ = v.validator.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(tag, text, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, _ := ut.T(tag, fe.Field())
				return msg
			},
		)
	}
}
