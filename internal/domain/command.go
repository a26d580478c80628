package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CommandKind вид команды мокирования.
type CommandKind int

const (
	// CommandOff запрос уходит на реальный сервер без изменений.
	CommandOff CommandKind = iota
	// CommandOn запрос перенаправляется на фикстуру.
	CommandOn
	// CommandStatus запрос не выполняется, возвращается заданный HTTP статус.
	CommandStatus
	// CommandAuto сначала реальный запрос, при ошибке один раз фикстура.
	CommandAuto
)

func (k CommandKind) String() string {
	switch k {
	case CommandOn:
		return "on"
	case CommandStatus:
		return "status"
	case CommandAuto:
		return "auto"
	}

	return "off"
}

// Command команда, определяющая обработку запроса.
type Command struct {
	Kind   CommandKind
	Status int
}

// Off ...
func Off() Command {
	return Command{Kind: CommandOff}
}

// On ...
func On() Command {
	return Command{Kind: CommandOn}
}

// Auto ...
func Auto() Command {
	return Command{Kind: CommandAuto}
}

const (
	minStatusCode = 100
	maxStatusCode = 999
)

// Status возвращает команду подмены HTTP статуса.
// Код вне диапазона 100..999, в том числе нулевой, означает off.
func Status(code int) Command {
	if code < minStatusCode || code > maxStatusCode {
		return Off()
	}

	return Command{Kind: CommandStatus, Status: code}
}

// IsOff ...
func (c Command) IsOff() bool {
	return c.Kind == CommandOff
}

func (c Command) String() string {
	if c.Kind == CommandStatus {
		return strconv.Itoa(c.Status)
	}

	return c.Kind.String()
}

// ParseCommand разбирает значение флага из строки запроса.
// Нераспознанные значения означают off.
func ParseCommand(s string) Command {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "true":
		return On()
	case "auto":
		return Auto()
	}

	if code, err := strconv.Atoi(s); err == nil {
		return Status(code)
	}

	return Off()
}

// CommandFromValue приводит произвольное значение переопределения к команде.
// Ложные значения (false, "", 0, NaN, nil) означают off.
func CommandFromValue(v any) Command {
	switch val := v.(type) {
	case nil:
		return Off()
	case Command:
		return val
	case *Command:
		if val == nil {
			return Off()
		}
		return *val
	case bool:
		if val {
			return On()
		}
		return Off()
	case string:
		return ParseCommand(val)
	case int:
		return Status(val)
	case int32:
		return Status(int(val))
	case int64:
		return Status(int(val))
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) || val != math.Trunc(val) {
			return Off()
		}
		return Status(int(val))
	case float32:
		return CommandFromValue(float64(val))
	case fmt.Stringer:
		return ParseCommand(val.String())
	}

	return Off()
}
