package writer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Console 输出到 stderr，stdout 留给命令结果
func Console() zerolog.ConsoleWriter {
	return ConsoleTo(os.Stderr)
}

// ConsoleTo 输出到 w，w 不是终端时关闭颜色
func ConsoleTo(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:         w,
		NoColor:     !isTerminal(w),
		TimeFormat:  time.DateTime,
		FormatLevel: func(i any) string { return strings.ToUpper(fmt.Sprintf("| %-6s|", i)) },
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
