package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/planteur/planteur-core/internal/infrastructure/config"
)

// Client is the gateway's broker connection, shared by the mqttin adapter
// and the watering notifier.
//
// On every (re)connect it restores subscriptions and publishes a retained
// online status built from the gateway Identity. Close publishes a graceful
// offline status; a crash leaves the broker to publish the Last Will.
//
// All methods are safe for concurrent use.
type Client struct {
	paho pahomqtt.Client
	cfg  config.MQTTConfig
	id   Identity

	mu            sync.RWMutex
	subscriptions map[string]subscription
	onConnect     func()
	onDisconnect  func(err error)
	logger        Logger
	closed        bool
}

// Logger is the subset of logging.Logger the client uses.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MessageHandler receives one inbound message. It runs on a paho goroutine;
// a returned error is logged and the message is still acknowledged.
type MessageHandler func(topic string, payload []byte) error

type subscription struct {
	qos     byte
	handler pahomqtt.MessageHandler
}

// Connect dials the broker described by cfg and announces id on the status
// topic. It waits up to defaultConnectTimeout for the first connection;
// later drops are retried by paho in the background.
func Connect(cfg config.MQTTConfig, id Identity) (*Client, error) {
	c := &Client{
		cfg:           cfg,
		id:            id,
		subscriptions: make(map[string]subscription),
	}

	opts := buildClientOptions(cfg, id.Gateway)
	configureWill(opts, id)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.connected() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.lost(err) })
	opts.SetReconnectingHandler(func(pahomqtt.Client, *pahomqtt.ClientOptions) {
		c.logWarn("MQTT reconnecting", "gateway", id.Gateway)
	})

	c.paho = pahomqtt.NewClient(opts)
	token := c.paho.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		// ConnectRetry keeps dialling in the background otherwise.
		c.paho.Disconnect(0)
		return nil, fmt.Errorf("%w: no CONNACK within %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return c, nil
}

// connected restores subscriptions and announces the gateway. It runs on
// the initial connect and on every reconnect.
func (c *Client) connected() {
	c.mu.RLock()
	subs := make(map[string]subscription, len(c.subscriptions))
	for topic, sub := range c.subscriptions {
		subs[topic] = sub
	}
	callback := c.onConnect
	c.mu.RUnlock()

	for topic, sub := range subs {
		if err := waitAck(c.paho.Subscribe(topic, sub.qos, sub.handler), ErrSubscribeFailed); err != nil {
			c.logWarn("restoring MQTT subscription failed", "topic", topic, "error", err)
		}
	}

	c.publishStatus(StateOnline, "")

	if callback != nil {
		callback()
	}
}

func (c *Client) lost(err error) {
	c.mu.RLock()
	callback := c.onDisconnect
	c.mu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// publishStatus publishes a retained status without waiting for the ack.
func (c *Client) publishStatus(state, reason string) pahomqtt.Token {
	st := c.id.statusFor(state, reason, c.Subscriptions(), time.Now())
	return c.paho.Publish(Topics{}.SystemStatus(), c.QoS(), true, encodeStatus(st))
}

// Close announces a graceful shutdown and disconnects. Further calls
// return ErrNotConnected. Safe on a zero Client.
func (c *Client) Close() error {
	if c.paho == nil {
		return nil
	}

	if c.IsConnected() {
		c.publishStatus(StateOffline, ReasonShutdown).WaitTimeout(ackTimeout)
	}

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.paho.Disconnect(defaultDisconnectQuiesce)
	return nil
}

// HealthCheck reports ErrNotConnected while the broker link is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports whether the broker link is up. It is false while
// paho is reconnecting and after Close.
func (c *Client) IsConnected() bool {
	if c.paho == nil {
		return false
	}
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	return !closed && c.paho.IsConnectionOpen()
}

// QoS returns the configured default QoS.
func (c *Client) QoS() byte {
	return byte(c.cfg.QoS) // #nosec G115 -- validated to 0..2 by config
}

// SetOnConnect registers a callback run after every (re)connect.
func (c *Client) SetOnConnect(callback func()) {
	c.mu.Lock()
	c.onConnect = callback
	c.mu.Unlock()
}

// SetOnDisconnect registers a callback run when the link drops.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.mu.Lock()
	c.onDisconnect = callback
	c.mu.Unlock()
}

// SetLogger sets the logger for handler failures and reconnects.
func (c *Client) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

func (c *Client) logWarn(msg string, args ...any) {
	c.mu.RLock()
	logger := c.logger
	c.mu.RUnlock()
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

func (c *Client) logError(msg string, args ...any) {
	c.mu.RLock()
	logger := c.logger
	c.mu.RUnlock()
	if logger != nil {
		logger.Error(msg, args...)
	}
}

// wrapHandler adapts a MessageHandler to paho, logging returned errors and
// recovering panics.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				c.logError("MQTT handler panic recovered", "topic", msg.Topic(), "panic", r)
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			c.logWarn("MQTT message rejected", "topic", msg.Topic(), "error", err)
		}
	}
}

// waitAck waits for token and wraps a failure or timeout in op.
func waitAck(token pahomqtt.Token, op error) error {
	if !token.WaitTimeout(ackTimeout) {
		return fmt.Errorf("%w: no ack within %v", op, ackTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", op, err)
	}
	return nil
}
