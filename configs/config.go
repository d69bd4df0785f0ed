package configs

import (
	"log"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config struct
type Config struct {
	App       `mapstructure:"app"`
	Messenger `mapstructure:"messenger"`
	Wit       `mapstructure:"wit"`
	Algolia   `mapstructure:"algolia"`
}

// App struct
type App struct {
	Debug bool   `mapstructure:"debug"`
	Env   string `mapstructure:"env"`
	Port  string `mapstructure:"port"`
}

// Messenger struct - Messenger platform credentials and Send API settings
type Messenger struct {
	AppSecret    string `mapstructure:"app_secret" validate:"required"`
	PageToken    string `mapstructure:"page_token" validate:"required"`
	VerifyToken  string `mapstructure:"verify_token" validate:"required"`
	GraphBaseURL string `mapstructure:"graph_base_url"`
	Timeout      int    `mapstructure:"timeout"` // seconds, 0 means adapter default
}

// Wit struct - decision service settings.
// MaxSteps caps the action loop per turn so a misbehaving decision service
// cannot request actions indefinitely; 0 means the runner default.
// Actions is the service's known action vocabulary, checked against the
// registry at startup.
type Wit struct {
	Token      string   `mapstructure:"token" validate:"required"`
	BaseURL    string   `mapstructure:"base_url"`
	APIVersion string   `mapstructure:"api_version"`
	Timeout    int      `mapstructure:"timeout"` // seconds, 0 means adapter default
	MaxSteps   int      `mapstructure:"max_steps"`
	Actions    []string `mapstructure:"actions"`
}

// Algolia struct - merchant search index settings
type Algolia struct {
	AppID   string `mapstructure:"app_id" validate:"required"`
	APIKey  string `mapstructure:"api_key" validate:"required"`
	Index   string `mapstructure:"index" validate:"required"`
	BaseURL string `mapstructure:"base_url"`
	Filters string `mapstructure:"filters"`
	Timeout int    `mapstructure:"timeout"` // seconds, 0 means adapter default
}

var config Config

// InitViper func
func InitViper(path, env string) {
	getConfig(path, env)
}

// GetViper func
func GetViper() *Config {
	return &config
}

func getConfig(path, env string) {
	viper.SetConfigName("config")
	viper.AddConfigPath(path)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Println("Config file has changed: ", e.Name)
	})
	err = viper.Unmarshal(&config)
	if err != nil {
		log.Fatalln(err)
	}
}
