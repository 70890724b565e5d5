package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// MutationKind is what happened to an entity.
type MutationKind string

const (
	Created MutationKind = "created"
	Updated MutationKind = "updated"
	Deleted MutationKind = "deleted"
)

// MutationMessage announces a successful write so that other dashboards can
// refresh. It carries no entity data; receivers fetch from the backend.
type MutationMessage struct {
	Entity    string       `json:"entity"`
	Kind      MutationKind `json:"kind"`
	ID        string       `json:"id"`
	Origin    string       `json:"origin"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewMutationMessage(entity string, kind MutationKind, id, origin string) *MutationMessage {
	return &MutationMessage{
		Entity:    entity,
		Kind:      kind,
		ID:        id,
		Origin:    origin,
		Timestamp: time.Now().UTC(),
	}
}

// RoutingKey is "<entity>.<kind>", e.g. "property.created".
func (m *MutationMessage) RoutingKey() string {
	return fmt.Sprintf("%s.%s", m.Entity, m.Kind)
}

func (m *MutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MutationMessageFromJSON(data []byte) (*MutationMessage, error) {
	var msg MutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Entity == "" || msg.Kind == "" {
		return nil, fmt.Errorf("mutation message missing entity or kind")
	}
	return &msg, nil
}
