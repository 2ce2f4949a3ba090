package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment      string
	ServicePort      string
	MetricsPort      string
	GRPCPort         string
	JWTSecret        string
	JWTTTL           time.Duration
	MongoDBConfig    MongoDBConfig
	PostgreSQLConfig PostgreSQLConfig
	KafkaConfig      KafkaConfig
	TracingConfig    TracingConfig
	SMTPConfig       SMTPConfig
	MarkupConfig     MarkupConfig
	CatalogResync    time.Duration
}

type MongoDBConfig struct {
	DBHost string
	DBPort string
	DBName string
	URI    string
}

type PostgreSQLConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUsername string
	DBPassword string
}

type KafkaConfig struct {
	BrokerAddress   string
	BrokerTopic     string
	BrokerPartition int
	GroupID         string
}

type TracingConfig struct {
	CollectorHost string
}

type SMTPConfig struct {
	Sender   string
	Password string
	Server   string
	Port     int
}

type MarkupConfig struct {
	ServiceHost string
	Timeout     time.Duration
}

func CreateNewConfig() *Config {
	godotenv.Load(".env")

	conf := Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServicePort: getEnv("SERVICE_PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "8081"),
		GRPCPort:    getEnv("GRPC_PORT", "9090"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTL:      getDuration("JWT_TTL", 24*time.Hour),
		MongoDBConfig: MongoDBConfig{
			DBHost: os.Getenv("MONGO_HOST"),
			DBPort: os.Getenv("MONGO_PORT"),
			DBName: getEnv("MONGO_DB_NAME", "astromart"),
			URI:    os.Getenv("MONGO_URI"),
		},
		PostgreSQLConfig: PostgreSQLConfig{
			DBHost:     os.Getenv("DB_HOST"),
			DBName:     os.Getenv("DB_NAME"),
			DBPort:     os.Getenv("DB_PORT"),
			DBUsername: os.Getenv("DB_USERNAME"),
			DBPassword: os.Getenv("DB_PASSWORD"),
		},
		KafkaConfig: KafkaConfig{
			BrokerAddress: os.Getenv("BROKER_ADDRESS"),
			BrokerTopic:   getEnv("BROKER_TOPIC", "astromart-events"),
			GroupID:       getEnv("BROKER_GROUP_ID", "astromart"),
		},
		TracingConfig: TracingConfig{
			CollectorHost: os.Getenv("COLLECTOR_HOST"),
		},
		SMTPConfig: SMTPConfig{
			Sender:   os.Getenv("SMTP_SENDER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			Server:   os.Getenv("SMTP_SERVER"),
		},
		MarkupConfig: MarkupConfig{
			ServiceHost: getEnv("MARKUP_SERVICE_HOST", "http://localhost:8000"),
			Timeout:     getDuration("MARKUP_TIMEOUT", 5*time.Second),
		},
		CatalogResync: getDuration("CATALOG_RESYNC_INTERVAL", time.Minute),
	}

	if conf.MongoDBConfig.URI == "" {
		conf.MongoDBConfig.URI = "mongodb://" + conf.MongoDBConfig.DBHost + ":" + conf.MongoDBConfig.DBPort
	}

	brokerPartition, err := strconv.Atoi(os.Getenv("BROKER_PARTITION"))
	if err == nil {
		conf.KafkaConfig.BrokerPartition = brokerPartition
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err == nil {
		conf.SMTPConfig.Port = smtpPort
	}

	return &conf
}

func (c SMTPConfig) Enabled() bool {
	return c.Server != "" && c.Sender != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}
