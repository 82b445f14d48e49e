package transport

import (
	"fmt"
	"strings"
)

type Type uint8

const (
	TypeZmq       = Type(0)
	TypeWebsocket = Type(1)

	TypeDefault = TypeZmq
)

var (
	AllTypes = Types{
		TypeZmq,
		TypeWebsocket,
	}
)

func (this *Type) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "zmq", "zeromq":
		*this = TypeZmq
		return nil
	case "websocket", "ws":
		*this = TypeWebsocket
		return nil
	default:
		return fmt.Errorf("illegal-transport-type: %s", plain)
	}
}

func (this Type) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-transport-type-%d", this)
	}
	return string(v)
}

func (this Type) MarshalText() (text []byte, err error) {
	switch this {
	case TypeZmq:
		return []byte("zmq"), nil
	case TypeWebsocket:
		return []byte("websocket"), nil
	default:
		return nil, fmt.Errorf("illegal transport type: %d", this)
	}
}

func (this *Type) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

func (this Type) defaultListenAddress() string {
	switch this {
	case TypeZmq:
		return "tcp://*:5555"
	case TypeWebsocket:
		return "127.0.0.1:5556"
	default:
		return ""
	}
}

type Types []Type

func (this Types) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Types) String() string {
	return strings.Join(this.Strings(), ",")
}
