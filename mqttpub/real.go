// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mqttpub

import (
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client paho.Client
	topic  string
}

// NewRealPublisher connects to broker, e.g. "tcp://localhost:1883". An empty
// topic selects Topic.
func NewRealPublisher(broker, clientID, topic string) (*RealPublisher, error) {
	if topic == "" {
		topic = Topic
	}
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errors.New("mqttpub: connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqttpub: connect to %s: %w", broker, err)
	}
	return &RealPublisher{client: client, topic: topic}, nil
}

// Publish sends a key event with QoS 0, not retained.
func (p *RealPublisher) Publish(event Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("mqttpub: format payload: %w", err)
	}
	token := p.client.Publish(p.topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("mqttpub: publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqttpub: publish: %w", err)
	}
	return nil
}

// IsConnected reports whether the client is connected to the broker.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker, waiting up to one second.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}

var _ Publisher = &RealPublisher{}
