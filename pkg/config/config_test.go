package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Set up test environment variables
	os.Setenv("botToken", "test-token")
	os.Setenv("PORT", "3001")
	os.Setenv("enviroment", "test")
	os.Setenv("TIMEZONE", "Europe/Madrid")
	os.Setenv("STORE_DRIVER", "Redis")
	defer func() {
		os.Unsetenv("botToken")
		os.Unsetenv("PORT")
		os.Unsetenv("enviroment")
		os.Unsetenv("TIMEZONE")
		os.Unsetenv("STORE_DRIVER")
	}()

	// Reset global config
	resetForTesting()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if config.BotToken != "test-token" {
		t.Errorf("BotToken = %v, want %v", config.BotToken, "test-token")
	}

	if config.Port != "3001" {
		t.Errorf("Port = %v, want %v", config.Port, "3001")
	}

	if config.Environment != "test" {
		t.Errorf("Environment = %v, want %v", config.Environment, "test")
	}

	if config.Timezone != "Europe/Madrid" {
		t.Errorf("Timezone = %v, want %v", config.Timezone, "Europe/Madrid")
	}

	if config.StoreDriver != StoreRedis {
		t.Errorf("StoreDriver = %v, want %v", config.StoreDriver, StoreRedis)
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	if got := getEnv("TEST_VAR", "default"); got != "test-value" {
		t.Errorf("getEnv() = %v, want %v", got, "test-value")
	}

	if got := getEnv("NON_EXISTENT_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want %v", got, "default")
	}
}

func TestIsProd(t *testing.T) {
	resetForTesting()
	os.Setenv("enviroment", "prod")
	config, _ := Load()

	if !config.IsProd() {
		t.Error("IsProd() should return true when environment is 'prod'")
	}

	resetForTesting()
	os.Setenv("enviroment", "dev")
	config, _ = Load()

	if config.IsProd() {
		t.Error("IsProd() should return false when environment is not 'prod'")
	}

	os.Unsetenv("enviroment")
}

func TestGet(t *testing.T) {
	resetForTesting()

	// Get should create a new config if none exists
	config := Get()
	if config == nil {
		t.Fatal("Get() returned nil")
	}

	// Get should return the same config on subsequent calls
	config2 := Get()
	if config != config2 {
		t.Error("Get() should return the same config on subsequent calls")
	}
}

func TestDefaultValues(t *testing.T) {
	// Clear all environment variables
	for _, key := range []string{"botToken", "guildId", "channelId", "mongodbUrl", "dbName", "MQTT_Host",
		"MQTT_Port", "PORT", "enviroment", "TIMEZONE", "WHITELIST", "WARNING_WINDOW", "STORE_DRIVER", "LOGS_DIR"} {
		os.Unsetenv(key)
	}

	resetForTesting()
	config, _ := Load()

	if config.MongoDBURL != "mongodb://localhost:27017" {
		t.Errorf("MongoDBURL default = %v, want %v", config.MongoDBURL, "mongodb://localhost:27017")
	}

	if config.DBName != "CapsFriday" {
		t.Errorf("DBName default = %v, want %v", config.DBName, "CapsFriday")
	}

	if config.MQTTEnabled() {
		t.Error("MQTT should be disabled when MQTT_Host is empty")
	}

	if config.MQTTPort != "1883" {
		t.Errorf("MQTTPort default = %v, want %v", config.MQTTPort, "1883")
	}

	if config.Port != "3000" {
		t.Errorf("Port default = %v, want %v", config.Port, "3000")
	}

	if config.Environment != "dev" {
		t.Errorf("Environment default = %v, want %v", config.Environment, "dev")
	}

	if config.Timezone != "" {
		t.Errorf("Timezone default = %q, want empty (UTC)", config.Timezone)
	}

	if config.StoreDriver != StoreMongo {
		t.Errorf("StoreDriver default = %v, want %v", config.StoreDriver, StoreMongo)
	}

	if config.Window() != 15*time.Minute {
		t.Errorf("Window() default = %v, want %v", config.Window(), 15*time.Minute)
	}

	if config.LogsDir != "logs" {
		t.Errorf("LogsDir default = %v, want %v", config.LogsDir, "logs")
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"15m", 15 * time.Minute},
		{" 30s ", 30 * time.Second},
		{"1h30m", 90 * time.Minute},
		{"", DefaultWarningWindow},
		{"soon", DefaultWarningWindow},
		{"-5m", DefaultWarningWindow},
		{"0", DefaultWarningWindow},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c := &Config{WarningWindow: tt.raw}
			if got := c.Window(); got != tt.want {
				t.Errorf("Window() = %v, want %v", got, tt.want)
			}
		})
	}
}
