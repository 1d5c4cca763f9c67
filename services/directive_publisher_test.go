package services

import (
	"testing"

	"classroom-energy-api/config"
)

func TestNewDirectivePublisherUnreachableBroker(t *testing.T) {
	// Port 1 refuses immediately; the constructor must surface the failure
	// instead of handing back an unconnected client.
	cfg := &config.MQTTConfig{
		URL:         "tcp://127.0.0.1:1",
		TopicPrefix: "classroom",
	}

	p, err := NewDirectivePublisher(cfg)
	if err == nil {
		if p != nil {
			p.Close()
		}
		t.Fatal("expected error for unreachable broker, got nil")
	}
	if p != nil {
		t.Errorf("publisher returned alongside error: %+v", p)
	}
}
