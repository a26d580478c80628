package domain

import "time"

// Fixture сохраненный ответ, адресуемый путем относительно корня фикстур.
type Fixture struct {
	Path      string
	Body      []byte
	UpdatedAt time.Time
}
