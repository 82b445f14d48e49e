package device

import (
	"fmt"
	"strings"
)

type Kind uint8

const (
	KindInput  = Kind(0)
	KindOutput = Kind(1)
)

var (
	AllKinds = Kinds{
		KindInput,
		KindOutput,
	}
)

func (this *Kind) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "input", "in", "capture", "source":
		*this = KindInput
		return nil
	case "output", "out", "playback", "sink":
		*this = KindOutput
		return nil
	default:
		return fmt.Errorf("illegal-device-kind: %s", plain)
	}
}

func (this Kind) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-device-kind-%d", this)
	}
	return string(v)
}

// Title returns the kind as used at the start of a human readable sentence.
func (this Kind) Title() string {
	switch this {
	case KindInput:
		return "Input"
	case KindOutput:
		return "Output"
	default:
		return this.String()
	}
}

func (this Kind) Other() Kind {
	if this == KindInput {
		return KindOutput
	}
	return KindInput
}

func (this Kind) MarshalText() (text []byte, err error) {
	switch this {
	case KindInput:
		return []byte("input"), nil
	case KindOutput:
		return []byte("output"), nil
	default:
		return nil, fmt.Errorf("illegal device kind: %d", this)
	}
}

func (this *Kind) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

type Kinds []Kind

func (this Kinds) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Kinds) String() string {
	return strings.Join(this.Strings(), ",")
}
