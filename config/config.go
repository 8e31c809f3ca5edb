package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Postgres struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (p Postgres) ConnStr() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s", p.Host, p.User, p.Password, p.DBName, p.Port, p.SSLMode)
}

func (p Postgres) ReplicationConnStr() string {
	return p.ConnStr() + " replication=database"
}

// Replication names the publication and slot the history change listener
// reads from.
type Replication struct {
	Name string `mapstructure:"name"`
	Slot string `mapstructure:"slot"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Nats struct {
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	Stream          string `mapstructure:"stream"`
	RequestsSubject string `mapstructure:"requestsSubject"`
	PromptsSubject  string `mapstructure:"promptsSubject"`
}

func (n Nats) ConnStr() string {
	return fmt.Sprintf("nats://%s:%s", n.Host, n.Port)
}

type Ollama struct {
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	EmbeddingModel string `mapstructure:"embeddingModel"`
}

func (o *Ollama) Address() string {
	return fmt.Sprintf("http://%s:%s", o.Host, o.Port)
}

type Server struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type Worker struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queueSize"`
}

type Prompt struct {
	MaxLength       int     `mapstructure:"maxLength"`
	DefaultLanguage string  `mapstructure:"defaultLanguage"`
	DefaultLocation string  `mapstructure:"defaultLocation"`
	FuzzyThreshold  int     `mapstructure:"fuzzyThreshold"`
	UseMLIntent     bool    `mapstructure:"useMLIntent"`
	SmartSelect     bool    `mapstructure:"smartSelect"`
	ScorerTemp      float64 `mapstructure:"scorerTemperature"`
}

type Templates struct {
	Files []string `mapstructure:"files"`
	Watch bool     `mapstructure:"watch"`
}

type Tokenizer struct {
	BaseDictionary string `mapstructure:"baseDictionary"`
	UserDictionary string `mapstructure:"userDictionary"`
	CacheSize      int    `mapstructure:"cacheSize"`
}

type History struct {
	Driver       string `mapstructure:"driver"`
	SqlitePath   string `mapstructure:"sqlitePath"`
	ChatDBPath   string `mapstructure:"chatDBPath"`
	CacheTTLSecs int    `mapstructure:"cacheTTLSeconds"`
}

type Weather struct {
	Table map[string]WeatherEntry `mapstructure:"table"`
}

type WeatherEntry struct {
	Weather     string  `mapstructure:"weather"`
	Temperature float64 `mapstructure:"temperature"`
}

type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Postgres    Postgres    `mapstructure:"postgres"`
	Replication Replication `mapstructure:"replication"`
	Redis       Redis       `mapstructure:"redis"`
	Nats        Nats        `mapstructure:"nats"`
	Ollama      Ollama      `mapstructure:"ollama"`
	Server      Server      `mapstructure:"server"`
	Worker      Worker      `mapstructure:"worker"`
	Prompt      Prompt      `mapstructure:"prompt"`
	Templates   Templates   `mapstructure:"templates"`
	Tokenizer   Tokenizer   `mapstructure:"tokenizer"`
	History     History     `mapstructure:"history"`
	Weather     Weather     `mapstructure:"weather"`
	Logging     Logging     `mapstructure:"logging"`
}

func LoadConfig() *Config {
	cfg, err := Load("./config/config.yaml")
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}

// Load reads the config file at path, overlays environment variables
// (prompt.maxLength -> PROMPT_MAXLENGTH) and fills defaults for anything unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("replication.name", "waiter_history")
	v.SetDefault("replication.slot", "waiter_history_slot")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("worker.workers", 2)
	v.SetDefault("worker.queueSize", 100)
	v.SetDefault("prompt.maxLength", 512)
	v.SetDefault("prompt.defaultLanguage", "zh-CN")
	v.SetDefault("prompt.defaultLocation", "北京")
	v.SetDefault("prompt.fuzzyThreshold", 80)
	v.SetDefault("prompt.scorerTemperature", 0.1)
	v.SetDefault("templates.files", []string{"./templates/prompt_templates.yaml"})
	v.SetDefault("tokenizer.cacheSize", 1000)
	v.SetDefault("history.driver", "sqlite")
	v.SetDefault("history.sqlitePath", "history.db")
	v.SetDefault("history.chatDBPath", "chat_history.db")
	v.SetDefault("history.cacheTTLSeconds", 300)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// SetupLogging installs the process-wide slog handler described by l.
func SetupLogging(l Logging) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(l.Format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
