package log

import (
	"github.com/rs/zerolog"
)

// G 全局 Logger，默认输出到控制台并启用默认脱敏规则；命令启动后由配置替换
var G = New()

// SetGlobalLogger 替换全局 Logger
func SetGlobalLogger(logger *Logger) {
	G = logger
}

// Info 全局 info 事件
func Info() *zerolog.Event {
	return G.Info()
}

// Error 全局 error 事件，附带堆栈
func Error() *zerolog.Event {
	return G.Error().Stack()
}
