package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("default db host = %q, want localhost", cfg.Database.Host)
	}
	if cfg.JWT.ExpiryHours != 24 {
		t.Errorf("default jwt expiry = %d, want 24", cfg.JWT.ExpiryHours)
	}
	if cfg.ML.HistoryPath != "data/history.csv" {
		t.Errorf("default history path = %q", cfg.ML.HistoryPath)
	}
	if cfg.ML.ModelPath != "data/occupancy_model.gob" {
		t.Errorf("default model path = %q", cfg.ML.ModelPath)
	}
	if cfg.MQTT.URL != "" {
		t.Errorf("MQTT enabled by default: %q", cfg.MQTT.URL)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("MQTT_URL", "tcp://broker:1883")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 5433 {
		t.Errorf("db = %s:%d, want db.internal:5433", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.JWT.Secret != "test-secret" {
		t.Errorf("jwt secret = %q", cfg.JWT.Secret)
	}
	if cfg.Redis.Host != "cache.internal" {
		t.Errorf("redis host = %q", cfg.Redis.Host)
	}
	if cfg.MQTT.URL != "tcp://broker:1883" {
		t.Errorf("mqtt url = %q", cfg.MQTT.URL)
	}
}

func TestLoadConfigRejectsBadInt(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for non-numeric SERVER_PORT")
	}
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "localhost", Port: 5432,
		User: "app", Password: "secret",
		Name: "classroom_energy", SSLMode: "disable",
	}
	want := "host=localhost port=5432 user=app password=secret dbname=classroom_energy sslmode=disable"
	if got := db.GetDSN(); got != want {
		t.Errorf("GetDSN() = %q, want %q", got, want)
	}
}
