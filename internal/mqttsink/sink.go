// Package mqttsink publishes the glucose status to an MQTT broker so other
// displays (home automation dashboards, LED matrices) can mirror it.
package mqttsink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/five82/glucobar/internal/glucose"
	"github.com/five82/glucobar/internal/logging"
	"github.com/five82/glucobar/internal/state"
)

// Options configure the sink.
type Options struct {
	Broker      string // host:port or a full tcp:// / ssl:// / ws:// URL
	TopicPrefix string
	ClientID    string
	HideStale   bool
	Logger      *slog.Logger
}

// Payload is the retained JSON document published on <prefix>/status.
type Payload struct {
	Text      string    `json:"text"`
	Mgdl      int       `json:"mgdl,omitempty"`
	Mmol      string    `json:"mmol,omitempty"`
	Direction string    `json:"direction,omitempty"`
	Glyph     string    `json:"glyph,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
	Stale     bool      `json:"stale"`
	Range     string    `json:"range,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// NewPayload converts a snapshot into its published form.
func NewPayload(snap state.Snapshot, now time.Time, hideStale bool) Payload {
	p := Payload{Text: snap.Title(now, hideStale)}
	if snap.HasReading {
		r := snap.Reading
		p.Mgdl = r.Mgdl
		p.Mmol = glucose.FormatMmol(r.Mgdl)
		p.Direction = string(r.Direction)
		p.Glyph = r.Direction.Glyph()
		p.Timestamp = r.Timestamp
		p.Stale = snap.IsStale(now)
		p.Range = r.Range.String()
	}
	if snap.LastError != nil {
		p.Error = snap.LastError.Error()
	}
	return p
}

// publisher is the subset of mqtt.Client the sink uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
}

// Sink mirrors store updates to MQTT.
type Sink struct {
	client    mqtt.Client
	pub       publisher
	topic     string
	hideStale bool
	logger    *slog.Logger

	mu       sync.Mutex
	lastSent []byte
}

// New prepares a sink; Connect must be called before Run.
func New(opts Options) (*Sink, error) {
	broker := strings.TrimSpace(opts.Broker)
	if broker == "" {
		return nil, fmt.Errorf("mqtt broker is empty")
	}
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	mqttOpts := mqtt.NewClientOptions()
	mqttOpts.AddBroker(broker)
	mqttOpts.SetClientID(opts.ClientID)
	mqttOpts.SetCleanSession(true)
	mqttOpts.SetAutoReconnect(true)
	mqttOpts.SetConnectRetry(true)
	mqttOpts.SetConnectRetryInterval(5 * time.Second)
	mqttOpts.SetMaxReconnectInterval(60 * time.Second)
	mqttOpts.SetKeepAlive(30 * time.Second)
	mqttOpts.SetPingTimeout(10 * time.Second)
	mqttOpts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", broker)
	})
	mqttOpts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	client := mqtt.NewClient(mqttOpts)
	return &Sink{
		client:    client,
		pub:       client,
		topic:     StatusTopic(opts.TopicPrefix),
		hideStale: opts.HideStale,
		logger:    logger,
	}, nil
}

// StatusTopic returns the topic the status document is published on.
func StatusTopic(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "status"
	}
	return prefix + "/status"
}

// Connect waits for the initial broker connection, respecting ctx.
func (s *Sink) Connect(ctx context.Context) error {
	token := s.client.Connect()
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			s.client.Disconnect(0)
			return ctx.Err()
		default:
		}
	}
}

// Run publishes every store change until ctx is cancelled, then disconnects.
func (s *Sink) Run(ctx context.Context, store *state.Store) {
	updates, cancel := store.Subscribe()
	defer cancel()
	defer s.client.Disconnect(250)

	// Publish whatever is already known so retained state is current.
	s.publish(store.Snapshot())

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			s.publish(snap)
		}
	}
}

func (s *Sink) publish(snap state.Snapshot) {
	if err := s.Publish(snap, time.Now()); err != nil {
		s.logger.Warn("mqtt publish failed", "topic", s.topic, "error", err)
	}
}

// Publish sends snap unless it is identical to the last document sent.
func (s *Sink) Publish(snap state.Snapshot, now time.Time) error {
	data, err := json.Marshal(NewPayload(snap, now, s.hideStale))
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSent != nil && string(s.lastSent) == string(data) {
		return nil
	}

	token := s.pub.Publish(s.topic, 1, true, data)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout for topic %s", s.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish status: %w", err)
	}
	s.lastSent = data
	s.logger.Debug("published status", "topic", s.topic, "text", snap.Text)
	return nil
}
