package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// RequestID is a value object representing a unique connection request identifier
type RequestID struct {
	value string
}

// NewRequestID creates a new random RequestID
func NewRequestID() RequestID {
	return RequestID{value: uuid.New().String()}
}

// NewRequestIDFromString creates a RequestID from an existing string
func NewRequestIDFromString(id string) (RequestID, error) {
	if id == "" {
		return RequestID{}, errors.New("request ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return RequestID{}, errors.New("request ID must be a valid UUID")
	}
	return RequestID{value: id}, nil
}

// String returns the string representation of the RequestID
func (id RequestID) String() string {
	return id.value
}

// Equals checks if two RequestIDs are equal
func (id RequestID) Equals(other RequestID) bool {
	return id.value == other.value
}

// IsZero checks if the RequestID is the zero value
func (id RequestID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id RequestID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *RequestID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("RequestID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
