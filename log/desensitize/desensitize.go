package desensitize

import (
	"fmt"
	"slices"
)

// Hook 按顺序应用一组脱敏规则，创建后只读，可并发使用
type Hook struct {
	rules []Rule
}

// NewHook 创建脱敏钩子，忽略 nil 规则
func NewHook(rules ...Rule) *Hook {
	h := &Hook{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		if r != nil {
			h.rules = append(h.rules, r)
		}
	}
	return h
}

// NewHookByName 按内置规则名创建钩子，未知名称返回错误
func NewHookByName(names ...string) (*Hook, error) {
	rules := make([]Rule, 0, len(names))
	for _, name := range names {
		r, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown desensitize rule %q, known: %v", name, Names())
		}
		if slices.Contains(rules, r) {
			continue
		}
		rules = append(rules, r)
	}
	return NewHook(rules...), nil
}

// Rules 返回规则名，按应用顺序
func (h *Hook) Rules() []string {
	names := make([]string, len(h.rules))
	for i, r := range h.rules {
		names[i] = r.Name()
	}
	return names
}

// Desensitize 对文本应用全部规则
func (h *Hook) Desensitize(s string) string {
	for _, r := range h.rules {
		s = r.Process(s)
	}
	return s
}
