package mqtt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"motord/motor"
)

// Topics are the control and status topics of one node.
type Topics struct {
	Move  string // control: signed power
	Stop  string // control: any payload
	State string // status: JSON State after every command
	Ping  string // status: liveness
	Error string // status: rejected or failed commands
}

// NewTopics builds the topic set for clientID under prefix.
func NewTopics(prefix, clientID string) Topics {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	control := fmt.Sprintf("%s/control/node/%s", prefix, clientID)
	status := fmt.Sprintf("%s/status/node/%s", prefix, clientID)
	return Topics{
		Move:  control + "/move",
		Stop:  control + "/stop",
		State: status + "/state",
		Ping:  status + "/ping",
		Error: status + "/error",
	}
}

// MoveRequest is the JSON form of a move payload.
type MoveRequest struct {
	Power *int `json:"power"`
}

// State is the payload published on the state topic.
type State struct {
	Direction string `json:"direction"`
	Power     int    `json:"power"`
	Code      int    `json:"code"`
	Percent   int    `json:"percent"`
}

// DecodeMove reads a signed power from either plain integer text or a
// {"power":n} object.
func DecodeMove(payload []byte) (int, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) > 0 && payload[0] == '{' {
		var req MoveRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return 0, fmt.Errorf("%w: decode move: %w", motor.ErrInvalidCommand, err)
		}
		if req.Power == nil {
			return 0, fmt.Errorf("%w: move without power", motor.ErrInvalidCommand)
		}
		return *req.Power, nil
	}

	power, err := strconv.Atoi(string(payload))
	if err != nil {
		return 0, fmt.Errorf("%w: power %q is not an integer", motor.ErrInvalidCommand, payload)
	}
	return power, nil
}

// EncodeState renders st together with the last applied power.
func EncodeState(st motor.State, power int) string {
	b, _ := json.Marshal(State{
		Direction: st.Direction.String(),
		Power:     power,
		Code:      st.Code,
		Percent:   st.Percent,
	})
	return string(b)
}

// ErrorReport is the payload published on the error topic.
type ErrorReport struct {
	Command string `json:"command,omitempty"`
	Error   string `json:"error"`
}

// EncodeError renders err, and the command that caused it if known.
func EncodeError(command string, err error) string {
	b, _ := json.Marshal(ErrorReport{Command: command, Error: err.Error()})
	return string(b)
}
