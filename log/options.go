package log

import (
	"github.com/rs/zerolog"

	"github.com/kochabx/webpush/log/desensitize"
)

type options struct {
	level  zerolog.Level
	caller bool
	hook   *desensitize.Hook
}

func defaultOptions() options {
	return options{
		level: zerolog.TraceLevel,
		hook:  desensitize.NewBuiltinHook(),
	}
}

// Option Logger 选项
type Option func(*options)

// WithLevel 设置日志级别
func WithLevel(level zerolog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithCaller 记录调用位置
func WithCaller() Option {
	return func(o *options) {
		o.caller = true
	}
}

// WithDesensitize 替换脱敏规则，默认为 desensitize.NewBuiltinHook()，nil 关闭脱敏
func WithDesensitize(hook *desensitize.Hook) Option {
	return func(o *options) {
		o.hook = hook
	}
}
