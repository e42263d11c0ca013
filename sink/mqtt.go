package sink

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/dglatting/rtl-acars-ng2/message"
)

// MQTTConfig configures the broker connection and publish topic.
type MQTTConfig struct {
	Broker   string
	ClientID string // generated if empty
	Username string
	Password string
	Topic    string
}

// MQTT publishes each decoded message as JSON to a single topic,
// grounded on the reference receiver's mqtt_publisher.go connection
// setup but trimmed to the single emit() call the frame pipeline needs.
type MQTT struct {
	client mqtt.Client
	topic  string
}

// mqttPayload is the wire shape published to MQTT.Topic.
type mqttPayload struct {
	Timestamp    int64  `json:"timestamp"`
	RxIdx        uint64 `json:"rx_idx"`
	Mode         string `json:"mode"`
	Address      string `json:"address"`
	Ack          string `json:"ack"`
	Label        string `json:"label"`
	BlockID      string `json:"block_id"`
	Sublabel     string `json:"sublabel,omitempty"`
	SeqNo        string `json:"seq_no"`
	FlightID     string `json:"flight_id"`
	Text         string `json:"text"`
	IsUplink     bool   `json:"is_uplink"`
	IsMultiblock bool   `json:"is_multiblock"`
	SignalDB     float64 `json:"signal_db"`
	CRCCorrected bool   `json:"crc_corrected"`
}

// NewMQTT connects to cfg.Broker and returns a ready-to-publish sink.
func NewMQTT(cfg MQTTConfig) (*MQTT, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "rtl-acars-ng2-" + randHex(8)
	}
	opts.SetClientID(clientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("mqtt: connection lost: %v", err)
	})
	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		log.Printf("mqtt: reconnecting")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("sink: mqtt connect: %w", token.Error())
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "acars/messages"
	}

	return &MQTT{client: client, topic: topic}, nil
}

func (m *MQTT) Emit(msg *message.Message, crcCorrected bool, rxIdx uint64) error {
	payload := mqttPayload{
		Timestamp:    time.Now().Unix(),
		RxIdx:        rxIdx,
		Mode:         string(msg.Mode),
		Address:      msg.Address,
		Ack:          string(msg.Ack),
		Label:        msg.Label,
		BlockID:      string(msg.BlockID),
		Sublabel:     msg.Sublabel,
		SeqNo:        msg.SeqNo,
		FlightID:     msg.FlightID,
		Text:         msg.Text,
		IsUplink:     msg.IsUplink,
		IsMultiblock: msg.IsMultiblock,
		SignalDB:     msg.SignalDB,
		CRCCorrected: crcCorrected,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sink: marshal mqtt payload: %w", err)
	}

	token := m.client.Publish(m.topic, 0, false, body)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}

func randHex(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return hex.EncodeToString(b)
}
