package config

import (
	"os"
	"path"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// DBConfig Database config
type DBConfig struct {
	Type     string `yaml:"type"` // postgres or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// SysConfig System config
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig WEB config
type WebConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Secret  string `yaml:"secret"`
	BaseURL string `yaml:"base_url"`
}

// LogConfig logger config
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// MediaConfig controls where uploads live and how they are compressed.
type MediaConfig struct {
	Root         string `yaml:"root"`
	URL          string `yaml:"url"`
	Quality      int    `yaml:"quality"`
	CleanupSched string `yaml:"cleanup_sched"`
}

// AdminConfig seeds the default back-office operator.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	TokenTTL int    `yaml:"token_ttl"` // hours
}

type AppConfig struct {
	System   SysConfig   `yaml:"system"`
	Web      WebConfig   `yaml:"web"`
	Database DBConfig    `yaml:"database"`
	Logger   LogConfig   `yaml:"logger"`
	Media    MediaConfig `yaml:"media"`
	Admin    AdminConfig `yaml:"admin"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) GetMediaDir() string {
	if path.IsAbs(c.Media.Root) {
		return c.Media.Root
	}
	return path.Join(c.System.Workdir, c.Media.Root)
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0o755)
	_ = os.MkdirAll(c.GetDataDir(), 0o755)
	_ = os.MkdirAll(c.GetMediaDir(), 0o755)
}

func setEnvValue(name string, val *string) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = cast.ToBool(evalue)
	}
}

func setEnvIntValue(name string, val *int) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	if p, err := cast.ToIntE(evalue); err == nil {
		*val = p
	}
}

// DefaultAppConfig is usable without any config file: sqlite in the workdir.
var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Visionmark",
		Location: "Asia/Kolkata",
		Workdir:  "/var/visionmark",
		Debug:    true,
	},
	Web: WebConfig{
		Host:    "0.0.0.0",
		Port:    8000,
		Secret:  "9b6de5cc-0731-4bf1-b4ea-d4c8e7b6d1a3",
		BaseURL: "http://localhost:8000",
	},
	Database: DBConfig{
		Type:     "sqlite",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "visionmark",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/visionmark/logs/visionmark.log",
	},
	Media: MediaConfig{
		Root:         "media",
		URL:          "/media/",
		Quality:      80,
		CleanupSched: "@daily",
	},
	Admin: AdminConfig{
		Username: "admin",
		Password: "visionmark",
		TokenTTL: 12,
	},
}

// LoadConfig reads the yaml file (if any), then applies .env and
// VISIONMARK_* environment overrides on top.
func LoadConfig(cfile string) *AppConfig {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	if cfile == "" {
		cfile = "visionmark.yml"
	}
	if !fileExists(cfile) {
		cfile = "/etc/visionmark.yml"
	}
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if fileExists(cfile) {
		data, err := os.ReadFile(cfile)
		if err != nil {
			panic(err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			panic(err)
		}
	}

	applyEnv(cfg)
	cfg.initDirs()
	return cfg
}

func applyEnv(cfg *AppConfig) {
	setEnvValue("VISIONMARK_SYSTEM_WORKER_DIR", &cfg.System.Workdir)
	setEnvValue("VISIONMARK_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("VISIONMARK_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("VISIONMARK_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("VISIONMARK_WEB_PORT", &cfg.Web.Port)
	setEnvValue("VISIONMARK_WEB_SECRET", &cfg.Web.Secret)
	setEnvValue("VISIONMARK_WEB_BASE_URL", &cfg.Web.BaseURL)

	setEnvValue("VISIONMARK_DB_TYPE", &cfg.Database.Type)
	setEnvValue("VISIONMARK_DB_HOST", &cfg.Database.Host)
	setEnvValue("VISIONMARK_DB_NAME", &cfg.Database.Name)
	setEnvValue("VISIONMARK_DB_USER", &cfg.Database.User)
	setEnvValue("VISIONMARK_DB_PWD", &cfg.Database.Passwd)
	setEnvIntValue("VISIONMARK_DB_PORT", &cfg.Database.Port)
	setEnvBoolValue("VISIONMARK_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("VISIONMARK_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("VISIONMARK_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)

	setEnvValue("VISIONMARK_MEDIA_ROOT", &cfg.Media.Root)
	setEnvIntValue("VISIONMARK_MEDIA_QUALITY", &cfg.Media.Quality)

	setEnvValue("VISIONMARK_ADMIN_USERNAME", &cfg.Admin.Username)
	setEnvValue("VISIONMARK_ADMIN_PASSWORD", &cfg.Admin.Password)

	cfg.Web.BaseURL = strings.TrimRight(cfg.Web.BaseURL, "/")
}

func fileExists(file string) bool {
	info, err := os.Stat(file)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
