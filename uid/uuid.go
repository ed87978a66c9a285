package uid

import "github.com/google/uuid"

// FromUUID reuses the 16 bytes of u as they are, version bits included.
func FromUUID(u uuid.UUID) ID {
	return ID{b: u}
}

func (x ID) UUID() uuid.UUID {
	return uuid.UUID(x.b)
}
