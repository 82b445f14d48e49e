package protocol

import (
	"encoding/json"
	"fmt"
)

type Status string

const (
	StatusSuccess = Status("success")
	StatusError   = Status("error")
)

const (
	MessageInvalidJSON    = "Invalid JSON"
	MessageUnknownCommand = "Unknown or invalid command"
)

// Response is one of Devices, Success or Failure.
type Response interface {
	Status() Status
}

// Devices answers GetDevices.
type Devices struct {
	Inputs  []string
	Outputs []string
}

func (Devices) Status() Status { return StatusSuccess }

// Success answers a successful SetInput or SetOutput.
type Success struct {
	Message string
}

func (Success) Status() Status { return StatusSuccess }

type Failure struct {
	Message string
}

func (Failure) Status() Status { return StatusError }

func (this Failure) Error() string {
	return this.Message
}

type wireResponse struct {
	Status  Status    `json:"status"`
	Inputs  *[]string `json:"inputs,omitempty"`
	Outputs *[]string `json:"outputs,omitempty"`
	Message *string   `json:"message,omitempty"`
}

func EncodeResponse(r Response) ([]byte, error) {
	switch v := r.(type) {
	case Devices:
		inputs, outputs := v.Inputs, v.Outputs
		if inputs == nil {
			inputs = []string{}
		}
		if outputs == nil {
			outputs = []string{}
		}
		return json.Marshal(wireResponse{Status: v.Status(), Inputs: &inputs, Outputs: &outputs})
	case Success:
		return json.Marshal(wireResponse{Status: v.Status(), Message: &v.Message})
	case Failure:
		return json.Marshal(wireResponse{Status: v.Status(), Message: &v.Message})
	default:
		return nil, fmt.Errorf("unsupported response type %T", r)
	}
}

// DecodeResponse is the client side counterpart of EncodeResponse.
func DecodeResponse(payload []byte) (Response, error) {
	var w wireResponse
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("cannot decode response: %w", err)
	}

	switch w.Status {
	case StatusSuccess:
		if w.Inputs != nil || w.Outputs != nil {
			result := Devices{Inputs: []string{}, Outputs: []string{}}
			if w.Inputs != nil {
				result.Inputs = *w.Inputs
			}
			if w.Outputs != nil {
				result.Outputs = *w.Outputs
			}
			return result, nil
		}
		var result Success
		if w.Message != nil {
			result.Message = *w.Message
		}
		return result, nil
	case StatusError:
		var result Failure
		if w.Message != nil {
			result.Message = *w.Message
		}
		return result, nil
	default:
		return nil, fmt.Errorf("cannot decode response: unknown status %q", w.Status)
	}
}
