package services

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"classroom-energy-api/config"
	"classroom-energy-api/models"
)

// DirectivePublisher pushes device directives to classroom controllers over
// MQTT. A nil publisher is valid and drops every directive, which keeps
// deployments without a broker working.
type DirectivePublisher struct {
	client      mqtt.Client
	topicPrefix string
}

func NewDirectivePublisher(cfg *config.MQTTConfig) (*DirectivePublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(fmt.Sprintf("classroom-energy-api-%d", time.Now().UnixNano())).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		client.Disconnect(0)
		return nil, fmt.Errorf("connect to MQTT broker %s timed out", cfg.URL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	return &DirectivePublisher{client: client, topicPrefix: cfg.TopicPrefix}, nil
}

type directivePayload struct {
	ClassroomID uint   `json:"classroom_id"`
	Lights      string `json:"lights"`
	AC          string `json:"ac"`
	Occupancy   string `json:"occupancy"`
	Timestamp   string `json:"timestamp"`
}

func (p *DirectivePublisher) PublishDirective(decision *models.EnergyDecision) error {
	if p == nil {
		return nil
	}

	payload, err := json.Marshal(directivePayload{
		ClassroomID: decision.ClassroomID,
		Lights:      decision.LightsAction,
		AC:          decision.ACAction,
		Occupancy:   decision.PredictedOccupancy,
		Timestamp:   decision.Timestamp.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	topic := fmt.Sprintf("%s/%d/directive", p.topicPrefix, decision.ClassroomID)
	token := p.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	return token.Error()
}

func (p *DirectivePublisher) Close() {
	if p == nil {
		return
	}
	p.client.Disconnect(250)
}
