package domain

const (
	// DefaultAPIPathPrefix префикс пути, запросы по которому можно мокировать.
	DefaultAPIPathPrefix = "/api/"
	// DefaultMockRoot корень, по которому лежат фикстуры.
	DefaultMockRoot = "/mock_data"
	// DefaultFlagName имя флага в строке запроса страницы.
	DefaultFlagName = "apiMock"
)

// ModuleConfig настройки модуля мокирования.
type ModuleConfig struct {
	Disabled      bool   `yaml:"disable"`
	StripQueries  bool   `yaml:"stripQueries"`
	APIPathPrefix string `yaml:"apiPathPrefix"`
	MockRoot      string `yaml:"mockRoot"`
	FlagName      string `yaml:"flagName"`
}

// NewModuleConfig создает конфигурацию по умолчанию.
func NewModuleConfig() ModuleConfig {
	return ModuleConfig{
		StripQueries:  true,
		APIPathPrefix: DefaultAPIPathPrefix,
		MockRoot:      DefaultMockRoot,
		FlagName:      DefaultFlagName,
	}
}

// WithDefaults заполняет пустые строковые поля значениями по умолчанию.
func (c ModuleConfig) WithDefaults() ModuleConfig {
	if c.APIPathPrefix == "" {
		c.APIPathPrefix = DefaultAPIPathPrefix
	}
	if c.MockRoot == "" {
		c.MockRoot = DefaultMockRoot
	}
	if c.FlagName == "" {
		c.FlagName = DefaultFlagName
	}

	return c
}
