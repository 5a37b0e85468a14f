// Package codec provides a global registry of wire codecs.
// Codecs register themselves in init() functions, allowing transports to
// pick one by name without hardcoded dependencies.
package codec

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownCodec is returned by Lookup for a name nothing registered.
var ErrUnknownCodec = errors.New("codec: unknown codec")

// Codec turns protocol messages into frames and back.
type Codec interface {
	// Name returns the identifier clients select the codec by (e.g., "json").
	Name() string

	// Binary reports whether frames must be sent as binary messages.
	Binary() bool

	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Default is the codec used when a client does not ask for one.
const Default = "json"

var (
	codecs = make(map[string]Codec)
	mu     sync.RWMutex
)

// Register adds a codec to the registry.
// Typically called from an init() function.
// Panics if a codec with the same name is already registered.
func Register(c Codec) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := codecs[c.Name()]; exists {
		panic(fmt.Sprintf("codec: %q already registered", c.Name()))
	}
	codecs[c.Name()] = c
}

// List returns the names of all registered codecs, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the codec registered under name. An empty name selects Default.
func Lookup(name string) (Codec, error) {
	if name == "" {
		name = Default
	}

	mu.RLock()
	defer mu.RUnlock()

	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownCodec, name)
	}
	return c, nil
}
