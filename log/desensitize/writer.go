package desensitize

import (
	"io"
)

// Writer 在写入前对每条日志脱敏
type Writer struct {
	out  io.Writer
	hook *Hook
}

// NewWriter 包装 out，hook 为 nil 或没有规则时原样写入
func NewWriter(out io.Writer, hook *Hook) *Writer {
	return &Writer{out: out, hook: hook}
}

// Write 实现 io.Writer，返回值按输入长度计算，脱敏改变长度不算短写
func (w *Writer) Write(p []byte) (int, error) {
	if w.hook == nil || len(w.hook.rules) == 0 {
		return w.out.Write(p)
	}
	text := string(p)
	masked := w.hook.Desensitize(text)
	if masked == text {
		return w.out.Write(p)
	}
	if _, err := io.WriteString(w.out, masked); err != nil {
		return 0, err
	}
	return len(p), nil
}
