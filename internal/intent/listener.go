package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"tcplightd/internal/eventbus"
)

// Listener subscribes to voice intents over MQTT and publishes them to the
// event bus. Topics follow <prefix>/<room>; the payload is the raw spoken
// phrase. Unrecognized phrases are dropped with a debug log.
type Listener struct {
	client      mqtt.Client
	topicPrefix string
	bus         *eventbus.Bus
}

// ListenerConfig holds MQTT connection settings for the intent listener.
type ListenerConfig struct {
	Broker      string // e.g. tcp://127.0.0.1:1883
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string // subscribed as <prefix>/+
}

// NewListener creates an MQTT intent listener publishing to bus.
func NewListener(cfg ListenerConfig, bus *eventbus.Bus) *Listener {
	l := &Listener{
		topicPrefix: strings.TrimSuffix(cfg.TopicPrefix, "/"),
		bus:         bus,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c mqtt.Client) {
			// Subscriptions do not survive reconnects with clean sessions,
			// so they are restored here.
			l.subscribe(c)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn().Err(err).Msg("Intent listener lost MQTT connection")
		})

	l.client = mqtt.NewClient(opts)
	return l
}

// Start connects to the broker. Subscription happens in the on-connect
// handler so it is re-established after reconnects.
func (l *Listener) Start(ctx context.Context) error {
	token := l.client.Connect()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	log.Info().Str("topic", l.topic()).Msg("Intent listener connected")
	return nil
}

// Close disconnects from the broker.
func (l *Listener) Close() {
	l.client.Disconnect(250)
}

func (l *Listener) topic() string {
	return l.topicPrefix + "/+"
}

func (l *Listener) subscribe(c mqtt.Client) {
	token := c.Subscribe(l.topic(), 1, l.handleMessage)
	go func() {
		<-token.Done()
		if err := token.Error(); err != nil {
			log.Error().Err(err).Str("topic", l.topic()).Msg("Intent subscription failed")
		}
	}()
}

func (l *Listener) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	room := msg.Topic()[strings.LastIndex(msg.Topic(), "/")+1:]
	phrase := string(msg.Payload())

	in, ok := ParseUtterance(room, phrase)
	if !ok {
		log.Debug().Str("room", room).Str("phrase", phrase).Msg("Unrecognized intent phrase")
		return
	}

	log.Info().
		Str("room", in.Room).
		Bool("on", in.TurnOn).
		Int("level", in.Level).
		Msg("Voice intent received")

	l.bus.Publish(eventbus.Event{Type: eventbus.EventTypeIntent, Data: in})
}
