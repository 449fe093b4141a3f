package protocol

import (
	"errors"
	"fmt"
)

// Error classes. Callers classify with errors.Is.
var (
	ErrFraming  = errors.New("protocol: framing error")
	ErrDecode   = errors.New("protocol: decode error")
	ErrProtocol = errors.New("protocol: protocol error")
	ErrRejected = errors.New("protocol: rejected")
)

// ErrNilNode is returned when a nil tree is passed for encoding.
var ErrNilNode = errors.New("protocol: nil node")

var (
	ErrUnexpectedMarker  = fmt.Errorf("%w: expected start-of-node marker", ErrFraming)
	ErrShortAttribute    = fmt.Errorf("%w: attribute length below 2", ErrFraming)
	ErrTruncated         = fmt.Errorf("%w: truncated stream", ErrFraming)
	ErrAttributeTooLarge = fmt.Errorf("%w: attribute too large", ErrFraming)
	ErrTooDeep           = fmt.Errorf("%w: nesting too deep", ErrFraming)

	ErrShortValue  = fmt.Errorf("%w: value too short", ErrDecode)
	ErrInvalidUTF8 = fmt.Errorf("%w: value is not valid utf-8", ErrDecode)
)
