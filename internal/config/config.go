package config

import (
	"context"
	"fmt"
	"sync"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	TelegramAPIToken string  `env:"TOKEN,required"`
	AllowedUserIDs   []int64 `env:"ALLOWED_USER_IDS,required"`
	DefaultLanguage  string  `env:"LANG,default=ru"`
	DBFilename       string  `env:"DB_FILENAME,default=warden.db"`
	DotPath          string  `env:"DOT_PATH,default=~/.warden"`
	LogLevel         int     `env:"LOG_LEVEL,default=4"`
	MetricsAddr      string  `env:"METRICS_ADDR,default=:2112"`
}

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

func Load() (Config, error) {
	once.Do(func() {
		cfg := &Config{}
		envcfg := envconfig.Config{
			Lookuper: envconfig.PrefixLookuper("WARDEN_", envconfig.OsLookuper()),
			Target:   cfg,
		}
		if err := envconfig.ProcessWith(context.Background(), &envcfg); err != nil {
			globalErr = fmt.Errorf("process env config: %w", err)
			return
		}
		dotPath, err := homedir.Expand(cfg.DotPath)
		if err != nil {
			globalErr = fmt.Errorf("expand dot path: %w", err)
			return
		}
		cfg.DotPath = dotPath
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}
