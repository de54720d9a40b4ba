package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-alarm/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
// Broker tests require a running Mosquitto broker at 127.0.0.1:1883 and
// are skipped when none is reachable.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "alarmpanel-test",
		},
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
		StatusTopic: "alarmpanel-test/availability",
	}
}

// connectOrSkip connects with cfg or skips the test when no broker is running.
func connectOrSkip(t *testing.T, cfg config.MQTTConfig) *Client {
	t.Helper()
	client, err := Connect(cfg)
	if err != nil {
		t.Skipf("MQTT broker not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// fakeMessage implements pahomqtt.Message.
type fakeMessage struct {
	topic    string
	payload  []byte
	id       uint16
	retained bool
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return m.retained }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return m.id }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

// mockLogger implements Logger for testing.
type mockLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *mockLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func (l *mockLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

// =============================================================================
// Option Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	tests := []struct {
		name   string
		tls    bool
		scheme string
	}{
		{"plain", false, "tcp"},
		{"tls", true, "ssl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Broker.TLS = tt.tls
			cfg.Auth.Username = "panel"
			cfg.Auth.Password = "secret"

			opts := buildClientOptions(cfg)

			if len(opts.Servers) != 1 {
				t.Fatalf("Servers = %v, want 1 broker", opts.Servers)
			}
			if opts.Servers[0].Scheme != tt.scheme {
				t.Errorf("scheme = %q, want %q", opts.Servers[0].Scheme, tt.scheme)
			}
			if opts.Servers[0].Host != "127.0.0.1:1883" {
				t.Errorf("host = %q, want 127.0.0.1:1883", opts.Servers[0].Host)
			}
			if opts.ClientID != "alarmpanel-test" {
				t.Errorf("ClientID = %q", opts.ClientID)
			}
			if opts.Username != "panel" || opts.Password != "secret" {
				t.Errorf("credentials = %q/%q", opts.Username, opts.Password)
			}
			if (opts.TLSConfig != nil) != tt.tls {
				t.Errorf("TLSConfig set = %v, want %v", opts.TLSConfig != nil, tt.tls)
			}
			if !opts.AutoReconnect || !opts.CleanSession {
				t.Error("AutoReconnect and CleanSession should be enabled")
			}
		})
	}
}

func TestConfigureLWT(t *testing.T) {
	cfg := testConfig()
	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg)

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false")
	}
	if opts.WillTopic != cfg.StatusTopic {
		t.Errorf("WillTopic = %q, want %q", opts.WillTopic, cfg.StatusTopic)
	}
	if !opts.WillRetained || opts.WillQos != statusQoS {
		t.Errorf("will retained=%v qos=%d", opts.WillRetained, opts.WillQos)
	}

	var st Status
	if err := json.Unmarshal(opts.WillPayload, &st); err != nil {
		t.Fatalf("will payload not JSON: %v", err)
	}
	if st.Status != StatusOffline || st.Reason != reasonUnexpected {
		t.Errorf("will status = %+v", st)
	}

	cfg.StatusTopic = ""
	opts = buildClientOptions(cfg)
	configureLWT(opts, cfg)
	if opts.WillEnabled {
		t.Error("WillEnabled = true with no status topic")
	}
}

func TestBuildStatusPayload(t *testing.T) {
	var st Status
	if err := json.Unmarshal(buildStatusPayload("panel-1", StatusOnline, ""), &st); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if st.Status != StatusOnline || st.ClientID != "panel-1" || st.Reason != "" {
		t.Errorf("status = %+v", st)
	}
	if _, err := time.Parse(time.RFC3339, st.Timestamp); err != nil {
		t.Errorf("timestamp %q: %v", st.Timestamp, err)
	}
}

// =============================================================================
// Handler Tests
// =============================================================================

func TestToMessage(t *testing.T) {
	msg := toMessage(fakeMessage{topic: "home/alarm/set", payload: []byte("DISARM"), id: 42, retained: true})
	if msg.ID != "42" {
		t.Errorf("ID = %q, want 42", msg.ID)
	}
	if msg.Topic != "home/alarm/set" || string(msg.Payload) != "DISARM" || !msg.Retained {
		t.Errorf("message = %+v", msg)
	}

	a := toMessage(fakeMessage{topic: "t"})
	b := toMessage(fakeMessage{topic: "t"})
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("QoS 0 IDs = %q, %q, want distinct non-empty", a.ID, b.ID)
	}
}

func TestWrapHandler(t *testing.T) {
	logger := &mockLogger{}
	c := &Client{}
	c.SetLogger(logger)

	var got Message
	c.wrapHandler(func(msg Message) error {
		got = msg
		return errors.New("boom")
	})(nil, fakeMessage{topic: "a", payload: []byte("x"), id: 7})

	if got.Topic != "a" || got.ID != "7" {
		t.Errorf("handler got %+v", got)
	}

	c.wrapHandler(func(Message) error {
		panic("handler panic")
	})(nil, fakeMessage{topic: "b"})

	logger.mu.Lock()
	defer logger.mu.Unlock()
	if len(logger.warns) != 1 {
		t.Errorf("warns = %v, want 1 entry", logger.warns)
	}
	if len(logger.errors) != 1 {
		t.Errorf("errors = %v, want 1 panic entry", logger.errors)
	}
}

func TestSetLogger(t *testing.T) {
	c := &Client{}
	c.SetLogger(&mockLogger{})
	if c.getLogger() == nil {
		t.Error("getLogger() = nil after SetLogger()")
	}
	c.SetLogger(nil)
	if c.getLogger() != nil {
		t.Error("getLogger() should be nil after SetLogger(nil)")
	}
}

// =============================================================================
// Disconnected Client Tests
// =============================================================================

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

// trackedTopics returns the topics recorded for replay after a reconnect.
func trackedTopics(c *Client) []string {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	out := make([]string, 0, len(c.subscriptions))
	for topic := range c.subscriptions {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

func TestIsConnected_InitialState(t *testing.T) {
	if (&Client{}).IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

func TestOperationsWithoutConnection(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}
	handler := func(Message) error { return nil }

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"publish empty topic", c.Publish("", nil, 0, false), ErrInvalidTopic},
		{"publish bad qos", c.Publish("t", nil, 3, false), ErrInvalidQoS},
		{"publish oversized", c.Publish("t", make([]byte, maxPayloadSize+1), 0, false), ErrPublishFailed},
		{"publish disconnected", c.Publish("t", []byte("x"), 0, false), ErrNotConnected},
		{"subscribe empty topic", c.Subscribe("", 0, handler), ErrInvalidTopic},
		{"publish wildcard", c.Publish("home/alarm/#", []byte("x"), 0, false), ErrInvalidTopic},
		{"subscribe bad qos", c.Subscribe("t", 3, handler), ErrInvalidQoS},
		{"subscribe multi-level wildcard", c.Subscribe("home/alarm/#", 0, handler), ErrInvalidTopic},
		{"subscribe single-level wildcard", c.Subscribe("home/alarm/sensor/+", 0, handler), ErrInvalidTopic},
		{"subscribe nil handler", c.Subscribe("t", 0, nil), ErrSubscribeFailed},
		{"subscribe disconnected", c.Subscribe("t", 0, handler), ErrNotConnected},
		{"unsubscribe empty topic", c.Unsubscribe(""), ErrInvalidTopic},
		{"unsubscribe wildcard", c.Unsubscribe("home/+/set"), ErrInvalidTopic},
		{"unsubscribe disconnected", c.Unsubscribe("t"), ErrNotConnected},
		{"health disconnected", c.HealthCheck(context.Background()), ErrNotConnected},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, tt.err, tt.want)
		}
	}

	if n := len(trackedTopics(c)); n != 0 {
		t.Errorf("tracked subscriptions = %d, want 0", n)
	}
}

func TestConnectInvalidBroker(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 19999

	_, err := Connect(cfg)
	if err == nil {
		t.Skip("something is listening on port 19999")
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

// =============================================================================
// Broker Tests
// =============================================================================

func TestConnectAndClose(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "alarmpanel-test-close"

	client := connectOrSkip(t, cfg)
	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() expected error for cancelled context")
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}

func TestPublishSubscribeRoundtrip(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "alarmpanel-test-pub"
	pub := connectOrSkip(t, cfg)

	cfg.Broker.ClientID = "alarmpanel-test-sub"
	sub := connectOrSkip(t, cfg)

	topic := "alarmpanel-test/roundtrip"
	received := make(chan Message, 1)

	err := sub.Subscribe(topic, 1, func(msg Message) error {
		received <- msg
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if got := trackedTopics(sub); len(got) != 1 || got[0] != topic {
		t.Errorf("tracked subscriptions = %v, want [%s]", got, topic)
	}

	time.Sleep(100 * time.Millisecond)

	if err := pub.Publish(topic, []byte(`{"command":"DISARM"}`), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-received:
		if string(msg.Payload) != `{"command":"DISARM"}` {
			t.Errorf("payload = %q", msg.Payload)
		}
		if msg.ID == "" {
			t.Error("message ID is empty")
		}
	case <-time.After(5 * time.Second):
		t.Error("timeout waiting for message")
	}

	if err := sub.Unsubscribe(topic); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if got := trackedTopics(sub); len(got) != 0 {
		t.Errorf("tracked subscriptions after Unsubscribe() = %v", got)
	}
}
