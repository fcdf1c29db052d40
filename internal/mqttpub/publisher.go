// Package mqttpub publishes refresh ticks to an MQTT topic so that signage
// screens can show the countdown without polling.
package mqttpub

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-clock/internal/schedule"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	quiesceMillis  = 250
)

// Client is the part of mqtt.Client the publisher needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher sends each view as a retained JSON message.
type Publisher struct {
	client Client
	topic  string
	log    zerolog.Logger
}

// New wraps an already connected client.
func New(client Client, topic string, log zerolog.Logger) *Publisher {
	return &Publisher{client: client, topic: topic, log: log}
}

// Connect dials broker (e.g. tcp://localhost:1883) and returns a Publisher.
func Connect(broker, clientID, topic string, log zerolog.Logger) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", broker).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", broker).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", broker, err)
	}

	return New(client, topic, log), nil
}

// Publish sends v without waiting for the broker. Delivery failures are
// logged from a separate goroutine.
func (p *Publisher) Publish(v schedule.View) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}

	token := p.client.Publish(p.topic, 0, true, data)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			p.log.Warn().Str("topic", p.topic).Msg("MQTT publish timed out")
			return
		}
		if err := token.Error(); err != nil {
			p.log.Warn().Err(err).Str("topic", p.topic).Msg("MQTT publish failed")
		}
	}()
	return nil
}

// Observer returns a loop observer publishing every tick with the store's
// raw slots attached.
func (p *Publisher) Observer(store *schedule.Store) schedule.Observer {
	return func(t schedule.Tick) {
		if err := p.Publish(schedule.Snapshot(store, &t)); err != nil {
			p.log.Warn().Err(err).Msg("MQTT publish skipped")
		}
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(quiesceMillis)
}
