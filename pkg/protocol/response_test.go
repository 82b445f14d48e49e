package protocol

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestEncodeResponse(t *testing.T) {
	cases := []struct {
		given    Response
		expected string
	}{
		{Devices{[]string{"Mic A", "Mic B"}, []string{"Speakers"}}, `{"status":"success","inputs":["Mic A","Mic B"],"outputs":["Speakers"]}`},
		{Devices{}, `{"status":"success","inputs":[],"outputs":[]}`},
		{Success{"Input device set successfully"}, `{"status":"success","message":"Input device set successfully"}`},
		{Failure{MessageInvalidJSON}, `{"status":"error","message":"Invalid JSON"}`},
		{Failure{MessageUnknownCommand}, `{"status":"error","message":"Unknown or invalid command"}`},
	}
	for _, c := range cases {
		actual, err := EncodeResponse(c.given)
		require.NoError(t, err)
		assert.Equal(t, c.expected, string(actual))
	}
}

func TestEncodeResponse_unsupported(t *testing.T) {
	_, err := EncodeResponse(nil)
	assert.Error(t, err)
}

func TestDecodeResponse(t *testing.T) {
	actual, err := DecodeResponse([]byte(`{"status":"success","inputs":["Mic A"],"outputs":[]}`))
	require.NoError(t, err)
	assert.Equal(t, Devices{[]string{"Mic A"}, []string{}}, actual)

	actual, err = DecodeResponse([]byte(`{"status":"success","message":"Output device set successfully"}`))
	require.NoError(t, err)
	assert.Equal(t, Success{"Output device set successfully"}, actual)

	actual, err = DecodeResponse([]byte(`{"status":"error","message":"Invalid JSON"}`))
	require.NoError(t, err)
	assert.Equal(t, Failure{"Invalid JSON"}, actual)
	assert.EqualError(t, actual.(Failure), "Invalid JSON")

	_, err = DecodeResponse([]byte(`{"status":"maybe"}`))
	assert.Error(t, err)

	_, err = DecodeResponse([]byte(`nope`))
	assert.Error(t, err)
}
