// Package config loads cakeapi settings from defaults, cakeapi.yaml, CAKEAPI_
// environment variables and command line flags, in increasing priority.
package config

import (
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	DefaultConfigFile = "cakeapi.yaml"
	EnvPrefix         = "CAKEAPI_"
)

type Config struct {
	API      APIConfig      `koanf:"api"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
}

type APIConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

func (c APIConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type DatabaseConfig struct {
	Username string            `koanf:"username"`
	Password string            `koanf:"password"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Name     string            `koanf:"name"`
	Params   map[string]string `koanf:"params"`
}

// DSN go-sql-driver/mysql 格式的连接串
func (c DatabaseConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	cfg.DBName = c.Name
	cfg.ParseTime = true
	if len(c.Params) > 0 {
		cfg.Params = c.Params
	}
	return cfg.FormatDSN()
}

type LogConfig struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

// Build 按配置创建 zap 日志
func (c LogConfig) Build() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if c.Level != "" {
		level, err := zap.ParseAtomicLevel(c.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "log.level %q", c.Level)
		}
		zc.Level = level
	}
	return zc.Build()
}

var defaults = map[string]any{
	"api.host":          "0.0.0.0",
	"api.port":          8080,
	"database.username": "root",
	"database.password": "",
	"database.host":     "127.0.0.1",
	"database.port":     3306,
	"database.name":     "cakes",
	"log.level":         "info",
	"log.development":   false,
}

// flagKeys 命令行参数到配置键的映射
var flagKeys = map[string]string{
	"host":        "api.host",
	"port":        "api.port",
	"db-host":     "database.host",
	"db-port":     "database.port",
	"db-user":     "database.username",
	"db-password": "database.password",
	"db-name":     "database.name",
	"log-level":   "log.level",
	"dev":         "log.development",
}

// RegisterFlags adds the flags Load understands to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (default ./"+DefaultConfigFile+")")
	flags.String("host", "", "listen host")
	flags.Int("port", 0, "listen port")
	flags.String("db-host", "", "MySQL host")
	flags.Int("db-port", 0, "MySQL port")
	flags.String("db-user", "", "MySQL user")
	flags.String("db-password", "", "MySQL password")
	flags.String("db-name", "", "MySQL database")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("dev", false, "development logging")
}

// Load 依次加载默认值, 配置文件, 环境变量与命令行参数. flags 可以为 nil
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, errors.Wrap(err, "load defaults")
	}

	cfgFile := ""
	if flags != nil {
		cfgFile, _ = flags.GetString("config")
	}
	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", cfgFile)
		}
	}

	// CAKEAPI_DATABASE__HOST -> database.host
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env vars")
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, errors.Wrap(err, "load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return &cfg, nil
}
