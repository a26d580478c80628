package reroute

import (
	"net/url"
	"slices"
	"strings"

	"github.com/kdv2001/apiMock/internal/domain"
)

// GlobalCommand ищет флаг в параметрах страницы без учета регистра имени.
// Если вариантов написания несколько, берется первый в лексикографическом порядке.
// Флаг без значения включает мокирование.
func GlobalCommand(values url.Values, flagName string) (domain.Command, bool) {
	if flagName == "" {
		flagName = domain.DefaultFlagName
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.EqualFold(k, flagName) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return domain.Off(), false
	}
	slices.Sort(keys)

	// флаг без значения (?apiMock) означает true
	v := values[keys[0]]
	if len(v) == 0 || v[0] == "" {
		return domain.On(), true
	}

	return domain.ParseCommand(v[0]), true
}

// ResolveCommand определяет действующую команду: выключенный модуль отключает мокирование,
// иначе переопределение запроса важнее глобальной команды.
func ResolveCommand(override *domain.Command, global domain.Command, cfg domain.ModuleConfig) domain.Command {
	if cfg.Disabled {
		return domain.Off()
	}

	if override != nil {
		return *override
	}

	return global
}
