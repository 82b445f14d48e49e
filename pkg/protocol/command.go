package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type Action string

const (
	ActionGetDevices = Action("get_devices")
	ActionSetInput   = Action("set_input")
	ActionSetOutput  = Action("set_output")
)

var (
	// ErrMalformedRequest means the payload is not a JSON object or one of
	// the known fields has the wrong type.
	ErrMalformedRequest = errors.New("malformed request")

	// ErrUnknownCommand means the action is unknown or a required field of
	// a known action is missing.
	ErrUnknownCommand = errors.New("unknown command")
)

// Command is one of GetDevices, SetInput or SetOutput.
type Command interface {
	Action() Action
}

type GetDevices struct{}

func (GetDevices) Action() Action { return ActionGetDevices }

type SetInput struct {
	DeviceName string
}

func (SetInput) Action() Action { return ActionSetInput }

type SetOutput struct {
	DeviceName string
}

func (SetOutput) Action() Action { return ActionSetOutput }

// DecodeCommand parses exactly one Command from payload.
func DecodeCommand(payload []byte) (Command, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedRequest)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}

	action, ok, err := stringField(fields, "action")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no action", ErrUnknownCommand)
	}

	switch Action(action) {
	case ActionGetDevices:
		return GetDevices{}, nil
	case ActionSetInput, ActionSetOutput:
		name, ok, err := stringField(fields, "device_name")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s without device_name", ErrUnknownCommand, action)
		}
		if Action(action) == ActionSetInput {
			return SetInput{name}, nil
		}
		return SetOutput{name}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, action)
	}
}

// EncodeCommand is the client side counterpart of DecodeCommand.
func EncodeCommand(c Command) ([]byte, error) {
	switch v := c.(type) {
	case GetDevices:
		return json.Marshal(wireCommand{Action: v.Action()})
	case SetInput:
		return json.Marshal(wireCommand{Action: v.Action(), DeviceName: &v.DeviceName})
	case SetOutput:
		return json.Marshal(wireCommand{Action: v.Action(), DeviceName: &v.DeviceName})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, c)
	}
}

type wireCommand struct {
	Action     Action  `json:"action"`
	DeviceName *string `json:"device_name,omitempty"`
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool, error) {
	raw, ok := fields[key]
	if !ok {
		return "", false, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", false, fmt.Errorf("%w: %s is null", ErrMalformedRequest, key)
	}
	var result string
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", false, fmt.Errorf("%w: %s is not a string", ErrMalformedRequest, key)
	}
	return result, true, nil
}
