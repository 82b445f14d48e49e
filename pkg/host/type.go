package host

import (
	"fmt"
	"strings"
)

type Type uint8

const (
	TypeAuto   = Type(0)
	TypeStatic = Type(1)
	TypeMalgo  = Type(2)
	TypePulse  = Type(3)
	TypeWca    = Type(4)

	TypeDefault = TypeAuto
)

var (
	AllTypes = Types{
		TypeAuto,
		TypeStatic,
		TypeMalgo,
		TypePulse,
		TypeWca,
	}

	// autoCandidates is the order in which TypeAuto tries the backends.
	// TypeStatic offers names only and is never chosen automatically.
	autoCandidates = Types{
		TypeWca,
		TypePulse,
		TypeMalgo,
	}
)

func (this *Type) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "auto", "":
		*this = TypeAuto
		return nil
	case "static":
		*this = TypeStatic
		return nil
	case "malgo", "miniaudio":
		*this = TypeMalgo
		return nil
	case "pulse", "pulseaudio":
		*this = TypePulse
		return nil
	case "wca", "windows":
		*this = TypeWca
		return nil
	default:
		return fmt.Errorf("illegal-host-type: %s", plain)
	}
}

func (this Type) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-host-type-%d", this)
	}
	return string(v)
}

func (this Type) MarshalText() (text []byte, err error) {
	switch this {
	case TypeAuto:
		return []byte("auto"), nil
	case TypeStatic:
		return []byte("static"), nil
	case TypeMalgo:
		return []byte("malgo"), nil
	case TypePulse:
		return []byte("pulse"), nil
	case TypeWca:
		return []byte("wca"), nil
	default:
		return nil, fmt.Errorf("illegal host type: %d", this)
	}
}

func (this *Type) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

// IsAvailable reports whether this build contains the backend.
func (this Type) IsAvailable() bool {
	if this == TypeAuto {
		return true
	}
	_, ok := factories[this]
	return ok
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

func (this Types) Available() (result Types) {
	for _, v := range this {
		if v.IsAvailable() {
			result = append(result, v)
		}
	}
	return result
}
