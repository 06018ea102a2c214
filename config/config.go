package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	Secret    string `yaml:"secret" json:"secret"`
	JwtSecret string `yaml:"jwt_secret" json:"jwt_secret"`
}

type DBConfig struct {
	Type    string `yaml:"type" json:"type"`
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
	Name    string `yaml:"name" json:"name"`
	User    string `yaml:"user" json:"user"`
	Passwd  string `yaml:"passwd" json:"passwd"`
	MaxConn int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int   `yaml:"idle_conn" json:"idle_conn"`
	Debug   bool   `yaml:"debug" json:"debug"`
}

type SmtpConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig  `yaml:"system" json:"system"`
	Web      WebConfig  `yaml:"web" json:"web"`
	Database DBConfig   `yaml:"database" json:"database"`
	Smtp     SmtpConfig `yaml:"smtp" json:"smtp"`
	Logger   LogConfig  `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "lacarte",
		Location: "Europe/Paris",
		Workdir:  "/var/lacarte",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1979,
		Secret:    "9b6de5cc-0731-4bf1-xxxx-0f568ac9da37",
		JwtSecret: "9b6de5cc-0731-4bf1-xxxx-0f568ac9da37",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "lacarte_v1",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Smtp: SmtpConfig{
		Host: "smtp.example.org",
		Port: 587,
		From: "no-reply@example.org",
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/lacarte/lacarte.log",
	},
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(path.Join(c.System.Workdir, "logs"), 0755)
	_ = os.MkdirAll(path.Join(c.System.Workdir, "data"), 0755)
}

func setEnvValue(name string, f func(v string)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue)
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue == "true" || evalue == "1" || evalue == "on")
	}
}

func setEnvIntValue(name string, f func(v int64)) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}

	p, err := parseInt64(evalue)
	if err == nil {
		f(p)
	}
}

func parseInt64(s string) (int64, error) {
	var v int64
	_, err := fmt.Sscanf(s, "%d", &v)
	return v, err
}

// LoadConfig loads the yaml configuration file and applies LACARTE_*
// environment overrides on top of it.
func LoadConfig(cfile string) *AppConfig {
	appconfig := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, appconfig)
		}
	}

	setEnvValue("LACARTE_SYSTEM_WORKDIR", func(v string) { appconfig.System.Workdir = v })
	setEnvBoolValue("LACARTE_SYSTEM_DEBUG", func(v bool) { appconfig.System.Debug = v })

	setEnvValue("LACARTE_WEB_HOST", func(v string) { appconfig.Web.Host = v })
	setEnvValue("LACARTE_WEB_SECRET", func(v string) { appconfig.Web.Secret = v })
	setEnvValue("LACARTE_WEB_JWT_SECRET", func(v string) { appconfig.Web.JwtSecret = v })
	setEnvIntValue("LACARTE_WEB_PORT", func(v int64) { appconfig.Web.Port = int(v) })

	setEnvValue("LACARTE_DB_TYPE", func(v string) { appconfig.Database.Type = v })
	setEnvValue("LACARTE_DB_HOST", func(v string) { appconfig.Database.Host = v })
	setEnvIntValue("LACARTE_DB_PORT", func(v int64) { appconfig.Database.Port = int(v) })
	setEnvValue("LACARTE_DB_NAME", func(v string) { appconfig.Database.Name = v })
	setEnvValue("LACARTE_DB_USER", func(v string) { appconfig.Database.User = v })
	setEnvValue("LACARTE_DB_PWD", func(v string) { appconfig.Database.Passwd = v })

	setEnvValue("LACARTE_SMTP_HOST", func(v string) { appconfig.Smtp.Host = v })
	setEnvIntValue("LACARTE_SMTP_PORT", func(v int64) { appconfig.Smtp.Port = int(v) })
	setEnvValue("LACARTE_SMTP_USERNAME", func(v string) { appconfig.Smtp.Username = v })
	setEnvValue("LACARTE_SMTP_PASSWORD", func(v string) { appconfig.Smtp.Password = v })
	setEnvValue("LACARTE_SMTP_FROM", func(v string) { appconfig.Smtp.From = v })

	setEnvValue("LACARTE_LOGGER_MODE", func(v string) { appconfig.Logger.Mode = v })
	setEnvBoolValue("LACARTE_LOGGER_FILE_ENABLE", func(v bool) { appconfig.Logger.FileEnable = v })

	return appconfig
}
