package desensitize

import (
	"fmt"
	"regexp"
)

// Rule 脱敏规则
type Rule interface {
	// Name 规则名，配置中按名称选择
	Name() string
	// Process 返回脱敏后的文本
	Process(s string) string
}

// ContentRule 按正则匹配整段文本替换，适合 PEM、Authorization 头等不以 JSON 字段出现的内容
type ContentRule struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// NewContentRule 创建内容规则，replacement 支持 ${1} 形式的分组引用
func NewContentRule(name, pattern, replacement string) (*ContentRule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("rule %s: invalid pattern: %w", name, err)
	}
	return &ContentRule{name: name, pattern: re, replacement: replacement}, nil
}

func mustContentRule(name, pattern, replacement string) *ContentRule {
	r, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *ContentRule) Name() string { return r.name }

func (r *ContentRule) Process(s string) string {
	return r.pattern.ReplaceAllString(s, r.replacement)
}

// FieldRule 只处理 JSON 字符串字段 "field":"value" 的值，value 经 pattern 替换
type FieldRule struct {
	name        string
	field       *regexp.Regexp // ("field"\s*:\s*")(value)(")
	value       *regexp.Regexp
	replacement string
}

// NewFieldRule 创建字段规则
func NewFieldRule(name, field, pattern, replacement string) (*FieldRule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}
	if field == "" {
		return nil, fmt.Errorf("rule %s: field cannot be empty", name)
	}
	value, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("rule %s: invalid pattern: %w", name, err)
	}
	return &FieldRule{
		name:        name,
		field:       regexp.MustCompile(`("` + regexp.QuoteMeta(field) + `"\s*:\s*")([^"]*)(")`),
		value:       value,
		replacement: replacement,
	}, nil
}

func mustFieldRule(name, field, pattern, replacement string) *FieldRule {
	r, err := NewFieldRule(name, field, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *FieldRule) Name() string { return r.name }

func (r *FieldRule) Process(s string) string {
	return r.field.ReplaceAllStringFunc(s, func(match string) string {
		m := r.field.FindStringSubmatch(match)
		return m[1] + r.value.ReplaceAllString(m[2], r.replacement) + m[3]
	})
}
