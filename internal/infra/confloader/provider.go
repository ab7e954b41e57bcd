package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
)

// mapProvider feeds a map with dotted keys ("server.redis.addr") to koanf.
type mapProvider map[string]any

func (m mapProvider) Read() (map[string]any, error) {
	return maps.Unflatten(m, "."), nil
}

// ReadBytes is part of koanf.Provider. A map has no byte form.
func (mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("confloader: map provider has no byte form")
}
