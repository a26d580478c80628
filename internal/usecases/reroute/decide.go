package reroute

import (
	"net/http"

	"github.com/kdv2001/apiMock/internal/domain"
)

// Action действие перехватчика над запросом.
type Action int

const (
	// ActionPassThrough запрос уходит без изменений.
	ActionPassThrough Action = iota
	// ActionReroute запрос перенаправляется на фикстуру.
	ActionReroute
	// ActionRespond запрос не выполняется, возвращается синтетический статус.
	ActionRespond
	// ActionRecover реальный запрос, при ошибке однократное перенаправление на фикстуру.
	ActionRecover
)

func (a Action) String() string {
	switch a {
	case ActionReroute:
		return "reroute"
	case ActionRespond:
		return "respond"
	case ActionRecover:
		return "recover"
	}

	return "pass"
}

// Input входные данные решения по одному запросу.
type Input struct {
	Method   string
	URL      string
	Params   map[string]string
	Override *domain.Command
}

// Decision результат решения по запросу.
type Decision struct {
	Action      Action
	Command     domain.Command
	FixturePath string
}

// Decide определяет, что делать с запросом, по конфигурации модуля,
// переопределению запроса и глобальной команде.
func Decide(cfg domain.ModuleConfig, in Input, global domain.Command) Decision {
	cfg = cfg.WithDefaults()
	cmd := ResolveCommand(in.Override, global, cfg)
	d := Decision{Command: cmd}

	apiPath := IsAPIPath(cfg, in.URL)
	switch cmd.Kind {
	case domain.CommandStatus:
		d.Action = ActionRespond
		return d
	case domain.CommandOn:
		// явное переопределение запроса работает и для путей вне API
		if !apiPath && in.Override == nil {
			return d
		}
		d.Action = ActionReroute
	case domain.CommandAuto:
		if !apiPath {
			return d
		}
		d.Action = ActionRecover
	default:
		return d
	}

	query := NormalizeQuery(in.URL, in.Params, cfg.StripQueries)
	method := in.Method
	if method == "" {
		method = http.MethodGet
	}
	d.FixturePath = BuildFixturePath(cfg, method, in.URL, query)

	return d
}
