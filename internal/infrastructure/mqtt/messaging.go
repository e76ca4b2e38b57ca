package mqtt

import (
	"fmt"
	"slices"
)

// Publish sends payload to topic and waits for the broker ack. Retain only
// status messages; a retained watering demand would be replayed to every
// valve controller that connects later.
//
//	err := client.Publish(mqtt.Topics{}.Watering(), payload, client.QoS(), false)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := validateTopic(topic, false); err != nil {
		return err
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	return waitAck(c.paho.Publish(topic, qos, retained, payload), ErrPublishFailed)
}

// Subscribe registers handler for topic, which may contain wildcards.
// The subscription is restored after every reconnect and listed in the
// gateway's online status.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := validateTopic(topic, true); err != nil {
		return err
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return ErrNilHandler
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	sub := subscription{qos: qos, handler: c.wrapHandler(handler)}
	if err := waitAck(c.paho.Subscribe(topic, qos, sub.handler), ErrSubscribeFailed); err != nil {
		return err
	}

	c.mu.Lock()
	c.subscriptions[topic] = sub
	c.mu.Unlock()
	return nil
}

// Unsubscribe drops topic. It is forgotten locally even when the broker
// does not ack, so a reconnect will not restore it.
func (c *Client) Unsubscribe(topic string) error {
	if err := validateTopic(topic, true); err != nil {
		return err
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.mu.Lock()
	delete(c.subscriptions, topic)
	c.mu.Unlock()

	return waitAck(c.paho.Unsubscribe(topic), ErrUnsubscribeFailed)
}

// Subscriptions returns the tracked topic filters, sorted.
func (c *Client) Subscriptions() []string {
	c.mu.RLock()
	topics := make([]string, 0, len(c.subscriptions))
	for topic := range c.subscriptions {
		topics = append(topics, topic)
	}
	c.mu.RUnlock()

	slices.Sort(topics)
	return topics
}
