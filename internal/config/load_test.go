package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_HappyPath(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	err = os.Mkdir(tempConfigsSubDir, 0755)
	require.NoError(t, err)

	testAppName := "TestApp"
	testPort := 9090
	testLogLevel := "debug"
	testThreshold := 0.5

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nRULES_FRAUD_THRESHOLD=%g\n",
		testAppName, testPort, testLogLevel, testThreshold,
	)
	envFilePath := filepath.Join(tempConfigsSubDir, "test_happy.env")
	err = os.WriteFile(envFilePath, []byte(envContent), 0644)
	require.NoError(t, err)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.Equal(t, testThreshold, cfg.Rules.FraudThreshold)

	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "score_requests", cfg.Kafka.ScoreRequestTopic)
	assert.Equal(t, "fraud_verdicts", cfg.Kafka.VerdictTopic)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "model/fraud_model.json", cfg.Model.ModelPath)
	assert.Equal(t, "model/scaler.json", cfg.Model.ScalerPath)
	assert.Equal(t, 3, cfg.Rules.TopFactors)
	assert.Equal(t, 10, cfg.WorkerPool.Size)

	cfgWithName, err := LoadConfigWithName("configs/test_happy") // Viper will look for configs/test_happy.env
	require.NoError(t, err)
	require.NotNil(t, cfgWithName)
	assert.Equal(t, testAppName, cfgWithName.Application.Name)

	// Test LoadConfigWithNameAndType
	cfgWithNameAndType, err := LoadConfigWithNameAndType("configs/test_happy", "env")
	require.NoError(t, err)
	require.NotNil(t, cfgWithNameAndType)
	assert.Equal(t, testAppName, cfgWithNameAndType.Application.Name)
}

func TestConfig_Validate_HappyPath(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{
		Application: ApplicationConfig{Env: v.GetString("APP_ENV"), Name: v.GetString("APP_NAME")},
		Logging:     LoggingConfig{Level: v.GetString("LOG_LEVEL")},
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
		},
		Kafka: KafkaConfig{
			Brokers:           v.GetString("KAFKA_BROKERS"),
			ScoreRequestTopic: v.GetString("KAFKA_SCORE_REQUEST_TOPIC"),
			VerdictTopic:      v.GetString("KAFKA_VERDICT_TOPIC"),
			NumPartitions:     v.GetInt("KAFKA_NUM_PARTITIONS"),
			ReplicationFactor: v.GetInt("KAFKA_REPLICATION_FACTOR"),
			ConsumerGroup:     v.GetString("KAFKA_CONSUMER_GROUP"),
			MinBytes:          v.GetInt("KAFKA_CONSUMER_MIN_BYTES"),
			MaxBytes:          v.GetInt("KAFKA_CONSUMER_MAX_BYTES"),
			MaxWait:           v.GetDuration("KAFKA_CONSUMER_MAX_WAIT"),
			StartOffset:       v.GetInt64("KAFKA_CONSUMER_START_OFFSET"),
			DLQTopic:          v.GetString("KAFKA_DLQ_TOPIC"),
		},
		Postgres: PostgresConfig{
			URL:             v.GetString("POSTGRES_URL"),
			MaxConns:        int32(v.GetInt("POSTGRES_MAX_CONNS")),
			MinConns:        int32(v.GetInt("POSTGRES_MIN_CONNS")),
			ConnMaxLifetime: v.GetDuration("POSTGRES_MAX_CONN_LIFETIME"),
			ConnMaxIdleTime: v.GetDuration("POSTGRES_MAX_CONN_IDLE_TIME"),
		},
		MongoDB: MongoDBConfig{
			URI:             v.GetString("MONGO_URI"),
			Database:        v.GetString("MONGO_DATABASE"),
			Timeout:         v.GetDuration("MONGO_TIMEOUT"),
			MaxPoolSize:     uint64(v.GetInt("MONGO_MAX_POOL_SIZE")),
			MinPoolSize:     uint64(v.GetInt("MONGO_MIN_POOL_SIZE")),
			MaxConnIdleTime: v.GetDuration("MONGO_MAX_CONN_IDLE_TIME"),
		},
		Model: ModelConfig{
			ModelPath:  v.GetString("MODEL_PATH"),
			ScalerPath: v.GetString("SCALER_PATH"),
		},
		Rules: RulesConfig{
			FraudThreshold:  v.GetFloat64("RULES_FRAUD_THRESHOLD"),
			AmountThreshold: v.GetFloat64("RULES_AMOUNT_THRESHOLD"),
			HourlyLimit:     v.GetFloat64("RULES_HOURLY_LIMIT"),
			TopFactors:      v.GetInt("RULES_TOP_FACTORS"),
		},
		WorkerPool: WorkerPoolConfig{
			Size: v.GetInt("WORKER_POOL_SIZE"),
		},
	}
	err := cfg.validate()
	assert.NoError(t, err, "Default config should be valid")
}

func TestConfig_Validate_RejectsBadThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
	}{
		{"zero", 0},
		{"negative", -0.2},
		{"above one", 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)
			cfg := &Config{
				Server: ServerConfig{
					Port:            v.GetInt("SERVER_PORT"),
					ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
					ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
					WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
					IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
				},
				Kafka: KafkaConfig{
					Brokers:           v.GetString("KAFKA_BROKERS"),
					ScoreRequestTopic: v.GetString("KAFKA_SCORE_REQUEST_TOPIC"),
					VerdictTopic:      v.GetString("KAFKA_VERDICT_TOPIC"),
					ConsumerGroup:     v.GetString("KAFKA_CONSUMER_GROUP"),
					MinBytes:          v.GetInt("KAFKA_CONSUMER_MIN_BYTES"),
					MaxBytes:          v.GetInt("KAFKA_CONSUMER_MAX_BYTES"),
					MaxWait:           v.GetDuration("KAFKA_CONSUMER_MAX_WAIT"),
					DLQTopic:          v.GetString("KAFKA_DLQ_TOPIC"),
				},
				Postgres: PostgresConfig{
					URL:             v.GetString("POSTGRES_URL"),
					MaxConns:        int32(v.GetInt("POSTGRES_MAX_CONNS")),
					MinConns:        int32(v.GetInt("POSTGRES_MIN_CONNS")),
					ConnMaxLifetime: v.GetDuration("POSTGRES_MAX_CONN_LIFETIME"),
					ConnMaxIdleTime: v.GetDuration("POSTGRES_MAX_CONN_IDLE_TIME"),
				},
				MongoDB: MongoDBConfig{
					URI:             v.GetString("MONGO_URI"),
					Database:        v.GetString("MONGO_DATABASE"),
					Timeout:         v.GetDuration("MONGO_TIMEOUT"),
					MaxPoolSize:     uint64(v.GetInt("MONGO_MAX_POOL_SIZE")),
					MinPoolSize:     uint64(v.GetInt("MONGO_MIN_POOL_SIZE")),
					MaxConnIdleTime: v.GetDuration("MONGO_MAX_CONN_IDLE_TIME"),
				},
				Model: ModelConfig{
					ModelPath:  v.GetString("MODEL_PATH"),
					ScalerPath: v.GetString("SCALER_PATH"),
				},
				Rules: RulesConfig{
					FraudThreshold:  tt.threshold,
					AmountThreshold: v.GetFloat64("RULES_AMOUNT_THRESHOLD"),
					HourlyLimit:     v.GetFloat64("RULES_HOURLY_LIMIT"),
					TopFactors:      v.GetInt("RULES_TOP_FACTORS"),
				},
				WorkerPool: WorkerPoolConfig{
					Size: v.GetInt("WORKER_POOL_SIZE"),
				},
			}
			err := cfg.validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "RULES_FRAUD_THRESHOLD")
		})
	}
}
