package writer

import (
	"fmt"
	"io"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateMode 日志轮转模式
type RotateMode int

const (
	// RotateModeTime 按时间轮转
	RotateModeTime RotateMode = iota
	// RotateModeSize 按大小轮转
	RotateModeSize
)

// String 返回轮转模式的字符串表示
func (m RotateMode) String() string {
	switch m {
	case RotateModeTime:
		return "time"
	case RotateModeSize:
		return "size"
	default:
		return "unknown"
	}
}

// ParseRotateMode 解析轮转模式：time / size
func ParseRotateMode(s string) (RotateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "time", "":
		return RotateModeTime, nil
	case "size":
		return RotateModeSize, nil
	default:
		return 0, fmt.Errorf("unknown rotate mode %q", s)
	}
}

// UnmarshalText 支持从配置文件中以字符串形式读取
func (m *RotateMode) UnmarshalText(text []byte) error {
	mode, err := ParseRotateMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// timeRotateWriter 按时间切分，webpush.log 链接到当前文件
func timeRotateWriter(c RotateConfig) (io.WriteCloser, error) {
	w, err := rotatelogs.New(
		c.path("%Y%m%d%H%M"),
		rotatelogs.WithLinkName(c.path("")),
		rotatelogs.WithMaxAge(time.Duration(c.Time.MaxAge)*time.Hour),
		rotatelogs.WithRotationTime(time.Duration(c.Time.RotationTime)*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create time rotate writer: %w", err)
	}
	return w, nil
}

// sizeRotateWriter 按大小切分
func sizeRotateWriter(c RotateConfig) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   c.path(""),
		MaxSize:    c.Size.MaxSize,
		MaxBackups: c.Size.MaxBackups,
		MaxAge:     c.Size.MaxAge,
		Compress:   c.Size.Compress,
	}
}
