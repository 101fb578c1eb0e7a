package writer

import (
	"fmt"
	"io"
	"path/filepath"
)

// RotateConfig 日志文件与轮转配置
type RotateConfig struct {
	Mode     RotateMode
	Filepath string
	Filename string
	FileExt  string
	Time     TimeRotateConfig
	Size     SizeRotateConfig
}

// TimeRotateConfig 按时间轮转
type TimeRotateConfig struct {
	MaxAge       int // 小时
	RotationTime int // 小时
}

// SizeRotateConfig 按大小轮转
type SizeRotateConfig struct {
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // 天
	Compress   bool
}

// File 按轮转模式创建日志文件 writer，调用方负责 Close
func File(c RotateConfig) (io.WriteCloser, error) {
	if c.Filename == "" {
		return nil, fmt.Errorf("log filename cannot be empty")
	}
	switch c.Mode {
	case RotateModeTime:
		return timeRotateWriter(c)
	case RotateModeSize:
		return sizeRotateWriter(c), nil
	default:
		return nil, fmt.Errorf("unsupported rotate mode: %v", c.Mode)
	}
}

// path 返回 <dir>/<name>[.<suffix>].<ext>，suffix 为 rotatelogs 时间格式
func (c RotateConfig) path(suffix string) string {
	name := c.Filename
	if suffix != "" {
		name += "." + suffix
	}
	return filepath.Join(c.Filepath, name+"."+c.FileExt)
}
