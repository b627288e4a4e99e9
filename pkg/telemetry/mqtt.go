package telemetry

import (
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	pkgerrors "github.com/pkg/errors"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second
)

// MQTTPublisher publishes each record as JSON to an MQTT broker.
type MQTTPublisher struct {
	client paho.Client
	topic  string
}

// NewMQTTPublisher connects to the given broker and returns a publisher
// for the given topic.
func NewMQTTPublisher(broker, topic, clientID string) (*MQTTPublisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, pkgerrors.Errorf("timed out connecting to mqtt broker %s", broker)
	}
	if err := token.Error(); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to connect to mqtt broker %s", broker)
	}

	return &MQTTPublisher{client: client, topic: topic}, nil
}

// Write publishes one record. QoS 0, not retained: a dropped sample is
// replaced by the next cycle anyway.
func (p *MQTTPublisher) Write(r Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal telemetry record")
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return pkgerrors.New("timed out publishing telemetry record")
	}
	if err := token.Error(); err != nil {
		return pkgerrors.Wrap(err, "failed to publish telemetry record")
	}

	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
