package wire

import "fmt"

// DecodeError reports a failure to interpret a byte slice as a wire value:
// insufficient input, trailing bytes, or a length exceeding PacketDataSize.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string { return fmt.Sprintf("wire: decode: %s", e.Reason) }

func decodeErrorf(format string, args ...any) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}

// EncodeError reports a failure to serialize a value into a Payload: the
// encoded form would overflow the fixed-capacity buffer.
type EncodeError struct {
	Reason string
}

func (e *EncodeError) Error() string { return fmt.Sprintf("wire: encode: %s", e.Reason) }

func encodeErrorf(format string, args ...any) error {
	return &EncodeError{Reason: fmt.Sprintf(format, args...)}
}
