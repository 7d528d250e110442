package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Service *ServiceConfig
	Storage *StorageConfig
	Worker  *WorkerConfig
	Kafka   *KafkaConfig
	S3      *S3Config
}

type ServiceConfig struct {
	Address        string   `envconfig:"TRANSCRIBER_ADDRESS" default:":5000"`
	MetricsAddress string   `envconfig:"TRANSCRIBER_METRICS_ADDRESS" default:":8080"`
	LogLevel       string   `envconfig:"TRANSCRIBER_LOG_LEVEL" default:"info"`
	LogFormat      string   `envconfig:"TRANSCRIBER_LOG_FORMAT" default:"console"`
	MaxUploadSize  int64    `envconfig:"TRANSCRIBER_MAX_UPLOAD_SIZE" default:"1073741824"`
	AllowedOrigins []string `envconfig:"TRANSCRIBER_ALLOWED_ORIGINS" default:"*"`
	LatencyBuckets string   `envconfig:"TRANSCRIBER_LATENCY_BUCKETS" default:""`
}

type StorageConfig struct {
	ResultsDir string `envconfig:"TRANSCRIBER_RESULTS_DIR" default:"results"`
	UploadsDir string `envconfig:"TRANSCRIBER_UPLOADS_DIR" default:"videos"`
}

type WorkerConfig struct {
	// Locator is one of compose, container or local.
	Locator          string        `envconfig:"TRANSCRIBER_WORKER_LOCATOR" default:"compose"`
	Service          string        `envconfig:"TRANSCRIBER_WORKER_SERVICE" default:"whisper_worker"`
	Project          string        `envconfig:"DOCKER_COMPOSE_PROJECT_NAME" default:""`
	Container        string        `envconfig:"TRANSCRIBER_WORKER_CONTAINER" default:""`
	Command          string        `envconfig:"TRANSCRIBER_WORKER_COMMAND" default:"python3 /app/transcribe.py"`
	VideosDir        string        `envconfig:"TRANSCRIBER_WORKER_VIDEOS_DIR" default:"/data/videos"`
	ResultsDir       string        `envconfig:"TRANSCRIBER_WORKER_RESULTS_DIR" default:"/data/results"`
	Concurrency      int           `envconfig:"TRANSCRIBER_WORKER_CONCURRENCY" default:"4"`
	QueueSize        int           `envconfig:"TRANSCRIBER_WORKER_QUEUE_SIZE" default:"64"`
	ExecutionTimeout time.Duration `envconfig:"TRANSCRIBER_WORKER_EXECUTION_TIMEOUT" default:"0"`
}

type KafkaConfig struct {
	Brokers  []string `envconfig:"TRANSCRIBER_KAFKA_BROKERS" default:""`
	Topic    string   `envconfig:"TRANSCRIBER_KAFKA_TOPIC" default:"transcriber.events"`
	Version  string   `envconfig:"TRANSCRIBER_KAFKA_VERSION" default:""`
	ClientID string   `envconfig:"TRANSCRIBER_KAFKA_CLIENT_ID" default:"transcriber"`
}

type S3Config struct {
	Endpoint        string `envconfig:"TRANSCRIBER_S3_ENDPOINT" default:""`
	Bucket          string `envconfig:"TRANSCRIBER_S3_BUCKET" default:"transcripts"`
	AccessKey       string `envconfig:"TRANSCRIBER_S3_ACCESS_KEY" default:""`
	SecretAccessKey string `envconfig:"TRANSCRIBER_S3_SECRET_KEY" default:""`
	Prefix          string `envconfig:"TRANSCRIBER_S3_PREFIX" default:""`
	UseSSL          bool   `envconfig:"TRANSCRIBER_S3_USE_SSL" default:"false"`
}

// New loads the configuration once. When envFile is set, its variables are
// loaded first; variables already present in the environment win.
func New(envFile string) (*Config, error) {
	if singleConfig == nil {
		cfg, err := load(envFile)
		if err != nil {
			return nil, err
		}
		singleConfig = cfg
	}
	return singleConfig, nil
}

func load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Worker.Locator {
	case "compose", "local":
	case "container":
		if c.Worker.Container == "" {
			return fmt.Errorf("TRANSCRIBER_WORKER_CONTAINER is required with the container locator")
		}
	default:
		return fmt.Errorf("unknown worker locator %q", c.Worker.Locator)
	}
	if len(c.Worker.CommandArgs()) == 0 {
		return fmt.Errorf("worker command is empty")
	}
	return nil
}

// CommandArgs splits the worker command on whitespace.
func (w *WorkerConfig) CommandArgs() []string {
	return strings.Fields(w.Command)
}

func (k *KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

func (s *S3Config) Enabled() bool {
	return s.Endpoint != ""
}
