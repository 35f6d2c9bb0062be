// Package codec centralizes bundle payload encoding.
//
// Codec selection is a compatibility boundary: persisted bundles record the
// codec name in their envelope header and are decoded with the codec of that
// name, so renaming a codec breaks existing files.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Names lists the stable names of the built-in codecs.
func Names() []string {
	return []string{GoJSON{}.Name(), JSON{}.Name()}
}

// Parse is ByName for user input; the empty string selects Default.
func Parse(name string) (Codec, error) {
	if name == "" {
		return Default, nil
	}
	c, ok := ByName(name)
	if !ok {
		return nil, fmt.Errorf("codec: unknown codec %q (want one of %v)", name, Names())
	}
	return c, nil
}
