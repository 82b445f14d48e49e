package server

import (
	"fmt"
)

type State uint32

const (
	StateBound = State(iota)
	StateServing
	StateDecoding
	StateDispatching
	StateReplying
	StateClosed
)

func (this State) String() string {
	switch this {
	case StateBound:
		return "bound"
	case StateServing:
		return "serving"
	case StateDecoding:
		return "decoding"
	case StateDispatching:
		return "dispatching"
	case StateReplying:
		return "replying"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("illegal-server-state-%d", this)
	}
}
