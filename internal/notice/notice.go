// Package notice carries the short user-facing messages a client shows as toasts.
package notice

type Level string

const (
	Success Level = "success"
	Error   Level = "error"
	Warning Level = "warning"
	Info    Level = "info"
)

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func New(level Level, msg string) Notice { return Notice{Level: level, Message: msg} }

func Ok(msg string) Notice   { return New(Success, msg) }
func Fail(msg string) Notice { return New(Error, msg) }
func Warn(msg string) Notice { return New(Warning, msg) }

// Generic is shown for failures with no specific message.
var Generic = New(Error, "Something went wrong. Please try again.")
