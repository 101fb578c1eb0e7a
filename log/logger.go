package log

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/kochabx/webpush/log/desensitize"
	"github.com/kochabx/webpush/log/writer"
)

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

// Logger zerolog 日志记录器，输出经过脱敏
type Logger struct {
	zerolog.Logger
	hook   *desensitize.Hook
	closer io.Closer
}

// DesensitizeHook 返回生效的脱敏钩子，未启用时为 nil
func (l *Logger) DesensitizeHook() *desensitize.Hook {
	return l.hook
}

// Close 关闭日志文件，控制台输出时为空操作
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func newLogger(w io.Writer, closer io.Closer, opts ...Option) *Logger {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	out := w
	if o.hook != nil {
		out = desensitize.NewWriter(w, o.hook)
	}
	ctx := zerolog.New(out).Level(o.level).With().Timestamp()
	if o.caller {
		ctx = ctx.Caller()
	}
	return &Logger{Logger: ctx.Logger(), hook: o.hook, closer: closer}
}

// New 创建输出到 stderr 的控制台 Logger
func New(opts ...Option) *Logger {
	return newLogger(writer.Console(), nil, opts...)
}

// NewWriter 创建以 JSON 输出到 w 的 Logger
func NewWriter(w io.Writer, opts ...Option) *Logger {
	return newLogger(w, nil, opts...)
}

// NewFile 创建按 c 轮转的文件 Logger，用完需 Close
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	c.Defaults()
	fw, err := writer.File(c.toWriterConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}
	return newLogger(fw, fw, opts...), nil
}

// NewMulti 同时输出到文件与控制台
func NewMulti(c FileConfig, opts ...Option) (*Logger, error) {
	c.Defaults()
	fw, err := writer.File(c.toWriterConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create file writer: %w", err)
	}
	return newLogger(zerolog.MultiLevelWriter(fw, writer.Console()), fw, opts...), nil
}
