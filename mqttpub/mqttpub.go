// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mqttpub publishes keypad presses to an MQTT broker.
package mqttpub

import (
	"encoding/json"
	"time"

	"github.com/GermanBionicSystems/keylcd/keypad"
)

// Topic is the default MQTT topic for key events.
const Topic = "keylcd/keypad/events"

// Publisher publishes key events.
type Publisher interface {
	// Publish sends a key event to the broker. A failure must not stop the
	// scan loop; the caller logs it.
	Publish(event Event) error
	// Close disconnects from the broker.
	Close() error
}

// Event is one key press.
type Event struct {
	Key       keypad.Key
	Row, Col  int
	Timestamp time.Time
}

// Payload is the JSON body of a key event message.
type Payload struct {
	Key       string `json:"key"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Timestamp string `json:"timestamp"`
}

// FormatPayload creates the JSON payload for a key event.
func FormatPayload(event Event) ([]byte, error) {
	return json.Marshal(Payload{
		Key:       event.Key.String(),
		Row:       event.Row,
		Col:       event.Col,
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
	})
}
