package amqp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"warikan/internal/sheets"
)

// RowOp is the mutation carried by a RowEvent.
type RowOp string

const (
	OpAppend RowOp = "append"
	OpDelete RowOp = "delete"
)

// RowEvent describes one change to the advance-payment rows. Delete events
// only carry the row id.
type RowEvent struct {
	Op        RowOp      `json:"op"`
	Row       sheets.Row `json:"row"`
	Timestamp time.Time  `json:"timestamp"`
}

func NewAppendEvent(r sheets.Row) *RowEvent {
	return &RowEvent{Op: OpAppend, Row: r, Timestamp: time.Now()}
}

func NewDeleteEvent(id string) *RowEvent {
	return &RowEvent{Op: OpDelete, Row: sheets.Row{ID: id}, Timestamp: time.Now()}
}

// ToJSON converts the message to JSON bytes
func (e *RowEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RowEventFromJSON decodes and validates a message body.
func RowEventFromJSON(data []byte) (*RowEvent, error) {
	var e RowEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Op != OpAppend && e.Op != OpDelete {
		return nil, fmt.Errorf("unknown row op %q", e.Op)
	}
	if strings.TrimSpace(e.Row.ID) == "" {
		return nil, fmt.Errorf("row event without id")
	}
	return &e, nil
}
