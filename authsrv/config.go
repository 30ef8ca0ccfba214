package authsrv

import (
	"fmt"

	"github.com/vimanuelt/p9sk1/application"
)

// Config contains the ticket service daemon's configuration: the
// listen address and the path of the LevelDB key database, along with
// the generic application values.
type Config struct {
	*application.CommonConfig
	ListenAddress *application.ServerAddress `toml:"listen"`
	DatabasePath  string                     `toml:"database"`

	// ConnTimeout bounds one ticket exchange, in seconds. Zero means
	// the built-in default. Reloadable at runtime via SIGUSR2.
	ConnTimeout int64 `toml:"conn_timeout,omitempty"`
}

var _ application.AppConfig = (*Config)(nil)

// NewConfig initializes a new ticket service daemon configuration at
// the given file path, with the given listen address, database path
// and logger configuration.
func NewConfig(file, encoding string, addr *application.ServerAddress,
	dbPath string, logConf *application.LoggerConfig) *Config {
	return &Config{
		CommonConfig:  application.NewCommonConfig(file, encoding, logConf),
		ListenAddress: addr,
		DatabasePath:  dbPath,
	}
}

// Load initializes the daemon's configuration from the given file
// using the given encoding.
func (conf *Config) Load(file, encoding string) error {
	conf.CommonConfig = application.NewCommonConfig(file, encoding, nil)
	if err := conf.GetLoader().Decode(conf); err != nil {
		return err
	}
	if conf.ListenAddress == nil {
		return fmt.Errorf("Config %s has no listen address", file)
	}
	return nil
}

// Save writes the daemon's configuration.
func (conf *Config) Save() error {
	return conf.GetLoader().Encode(conf)
}

// GetPath returns the path of the config file.
func (conf *Config) GetPath() string {
	return conf.Path
}
