package backend

import "encoding/json"

// MessageCodec encodes and decodes messages crossing the driver seam.
type MessageCodec interface {
	// Encode converts a Go value to bytes for transmission to native code.
	Encode(value any) ([]byte, error)

	// Decode converts bytes received from native code to a Go value.
	Decode(data []byte) (any, error)

	// DecodeInto converts bytes received from native code into a
	// specific type. Inbound events decode through this, so a driver
	// conversation speaks one format in both directions.
	DecodeInto(data []byte, v any) error
}

// JSONCodec implements MessageCodec using JSON encoding. JSON keeps the
// native side free of Go-specific serialization dependencies.
type JSONCodec struct{}

// Encode serializes the value to JSON bytes.
func (c JSONCodec) Encode(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Decode deserializes JSON bytes to a Go value.
func (c JSONCodec) Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// DecodeInto deserializes JSON bytes into a specific type.
func (c JSONCodec) DecodeInto(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// DefaultCodec is the codec used by the shipped adapters.
var DefaultCodec MessageCodec = JSONCodec{}
