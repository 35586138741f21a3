package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type logLevel string

const (
	Debug logLevel = "debug"
	Info  logLevel = "info"
	Warn  logLevel = "warn"
	Error logLevel = "error"
	Fatal logLevel = "fatal"
	Panic logLevel = "panic"
)

// Module tags log lines and error envelopes with the subsystem they came from.
type Module string

const (
	ModuleServer       Module = "server"
	ModuleSetting      Module = "setting"
	ModuleDatabase     Module = "database"
	ModuleS3           Module = "s3"
	ModuleMilvus       Module = "milvus"
	ModuleUpload       Module = "upload"
	ModuleIngest       Module = "ingest"
	ModuleSegment      Module = "segment"
	ModuleRetriever    Module = "retriever"
	ModuleQuery        Module = "query"
	ModuleConversation Module = "conversation"
	ModuleMetrics      Module = "metrics"
	ModuleHealth       Module = "health"
)

type serverConfig struct {
	Port        int    `koanf:"port" validate:"required"`
	Mode        string `koanf:"mode" validate:"required"`
	Concurrency int    `koanf:"concurrency" validate:"required"`
	BodyLimit   int    `koanf:"body_limit" validate:"required"`
	AppName     string `koanf:"app_name" validate:"required"`
}

type databaseConfig struct {
	Host         string `koanf:"host" validate:"required"`
	Port         int    `koanf:"port" validate:"required"`
	User         string `koanf:"user" validate:"required"`
	Password     string `koanf:"password"`
	Name         string `koanf:"name" validate:"required"`
	MaxIdleConns int    `koanf:"max_idle_conns" validate:"required"`
	MaxOpenConns int    `koanf:"max_open_conns" validate:"required"`
	MaxLifetime  int    `koanf:"max_lifetime" validate:"required"`
}

type openaiConfig struct {
	Key            string `koanf:"key"`
	Model          string `koanf:"model" validate:"required"`
	EmbeddingModel string `koanf:"embedding_model" validate:"required"`
}

type s3Config struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Region    string `koanf:"region" validate:"required"`
	UseSSL    bool   `koanf:"use_ssl"`
	Bucket    string `koanf:"bucket"`
}

type corsConfig struct {
	AllowOrigins []string `koanf:"allow_origins" validate:"required"`
	AllowMethods []string `koanf:"allow_methods" validate:"required"`
	AllowHeaders []string `koanf:"allow_headers" validate:"required"`
}

type milvusConfig struct {
	Address         string          `koanf:"address" validate:"required"`
	Collection      string          `koanf:"collection" validate:"required"`
	IndexHNSWConfig indexHNSWConfig `koanf:"index_hnsw_config"`
}

type indexHNSWConfig struct {
	MetricType     string `koanf:"metric_type" validate:"required"`
	M              int    `koanf:"m" validate:"required"`
	EfConstruction int    `koanf:"ef_construction" validate:"required"`
}

// segmentConfig drives the document segmentation engine.
type segmentConfig struct {
	TargetTokens   int  `koanf:"target_tokens" validate:"required,gt=0"`
	Overlap        int  `koanf:"overlap" validate:"gte=0"`
	MinChunkTokens int  `koanf:"min_chunk_tokens" validate:"gte=0"`
	StitchPages    bool `koanf:"stitch_pages"`
}

type queryConfig struct {
	TopK      int     `koanf:"top_k" validate:"required,gt=0"`
	Threshold float64 `koanf:"threshold" validate:"gte=0"`
}

type config struct {
	Server   serverConfig   `koanf:"server"`
	Database databaseConfig `koanf:"database"`
	OpenAI   openaiConfig   `koanf:"openai"`
	S3       s3Config       `koanf:"s3"`
	Cors     corsConfig     `koanf:"cors"`
	Milvus   milvusConfig   `koanf:"milvus"`
	Segment  segmentConfig  `koanf:"segment"`
	Query    queryConfig    `koanf:"query"`
	LogLevel logLevel       `koanf:"log_level"`
	Dns      string         `koanf:"dns"`
}

var defaultConfig = config{
	Server: serverConfig{
		Port:        8000,
		Mode:        "release",
		Concurrency: 256,
		BodyLimit:   64 << 20,
		AppName:     "policy-chat",
	},
	Database: databaseConfig{
		Host:         "127.0.0.1",
		Port:         3306,
		User:         "root",
		Password:     "",
		Name:         "policychat",
		MaxIdleConns: 4,
		MaxOpenConns: 16,
		MaxLifetime:  30,
	},
	OpenAI: openaiConfig{
		Key:            "",
		Model:          "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
	},
	S3: s3Config{
		Endpoint:  "http://localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Region:    "us-east-1",
		UseSSL:    false,
		Bucket:    "documents",
	},
	Cors: corsConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Request-ID"},
	},
	Milvus: milvusConfig{
		Address:    "localhost:19530",
		Collection: "chunks",
		IndexHNSWConfig: indexHNSWConfig{
			MetricType:     "IP",
			M:              16,
			EfConstruction: 200,
		},
	},
	Segment: segmentConfig{
		TargetTokens:   1200,
		Overlap:        300,
		MinChunkTokens: 50,
		StitchPages:    true,
	},
	Query: queryConfig{
		TopK:      6,
		Threshold: 0.25,
	},
	LogLevel: Info,
}

var (
	Cfg  = defaultConfig
	once sync.Once
)

func buildMySQLDSN(cfg databaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)
}

// Init loads configuration from the given YAML path layered with APP_* env
// vars on top of defaults. Only the first call loads; later calls are no-ops.
func Init(path string) error {
	var initErr error
	once.Do(func() {
		initErr = load(path)
	})
	return initErr
}

// envKey maps an APP_* environment variable to a config key. A double
// underscore separates nesting levels so snake_case leaf keys stay intact:
// APP_SERVER__BODY_LIMIT -> server.body_limit. Variables without a double
// underscore fall back to the plain form, APP_SERVER_PORT -> server.port.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "APP_"))
	if strings.Contains(s, "__") {
		return strings.ReplaceAll(s, "__", ".")
	}
	return strings.ReplaceAll(s, "_", ".")
}

func load(path string) error {
	k := koanf.New(".")
	Cfg = defaultConfig

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load config file: %w", err)
	}

	if err := k.Load(env.Provider("APP_", ".", envKey), nil); err != nil {
		return fmt.Errorf("load env config: %w", err)
	}

	if err := k.Unmarshal("", &Cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if Cfg.Dns == "" {
		Cfg.Dns = buildMySQLDSN(Cfg.Database)
	}

	validate := validator.New()
	if err := validate.Struct(Cfg); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			var sb strings.Builder
			sb.WriteString(fmt.Sprintf("%v: config validation failed:\n", ModuleSetting))
			for _, e := range errs {
				sb.WriteString(fmt.Sprintf("  %s: failed '%s' (value: %v)\n", e.Field(), e.Tag(), e.Value()))
			}
			return fmt.Errorf("%s", sb.String())
		}
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

func init() {
	// Package-level consumers (logger) still get defaults plus config.yaml
	// when present; the API entrypoint calls Init explicitly and surfaces
	// the error there.
	_ = Init("config.yaml")
}
