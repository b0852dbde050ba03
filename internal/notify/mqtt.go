package notify

import (
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTT publishes alarm notifications to a broker topic. Each delivery
// opens a fresh connection and disconnects; no broker state is kept
// between alarms.
type MQTT struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
	Retain   bool
	Username string
	Password string
}

func (m MQTT) Name() string { return "mqtt" }

func (m MQTT) Notify(message string) error {
	clientID := m.ClientID
	if clientID == "" {
		clientID = "reveil"
	}
	opts := pahomqtt.NewClientOptions().
		AddBroker(m.Broker).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second)

	if m.Username != "" {
		opts.SetUsername(m.Username)
	}
	if m.Password != "" {
		opts.SetPassword(m.Password)
	}

	client := pahomqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt: connect timeout")
	}
	if tok.Error() != nil {
		return fmt.Errorf("mqtt: connect: %w", tok.Error())
	}
	defer client.Disconnect(250)

	pub := client.Publish(m.Topic, m.QoS, m.Retain, message)
	if !pub.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt: publish timeout")
	}
	if pub.Error() != nil {
		return fmt.Errorf("mqtt: publish: %w", pub.Error())
	}
	return nil
}
