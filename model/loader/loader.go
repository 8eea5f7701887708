/*
Package loader resolves named model formats to the functions that
read them. Format packages register themselves from an init
function, so importing a format package (usually with a blank
import) is what makes its name available:

	import _ "github.com/CodingCat/tree-lite/model/json"

	m, err := loader.Load("json", f)

Loaders produce finished, already-compacted models directly; they do
not go through the builder.
*/
package loader

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/CodingCat/tree-lite/model"
)

// Func reads a complete model from r.
type Func func(r io.Reader) (*model.Model, error)

var (
	mu       sync.RWMutex
	registry = map[string]Func{}
)

// Register makes f available under the given format name. It panics
// if the name is already taken: format names are package-level
// identities, a clash is a programming error.
func Register(format string, f Func) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[format]; ok {
		panic(fmt.Sprintf("model format %q registered twice", format))
	}
	registry[format] = f
}

// Load reads a model from r using the loader registered under
// format.
func Load(format string, r io.Reader) (*model.Model, error) {
	mu.RLock()
	f, ok := registry[format]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown model format %q (known formats: %v)", format, Formats())
	}
	return f(r)
}

// Formats returns the registered format names in lexical order.
func Formats() []string {
	mu.RLock()
	defer mu.RUnlock()
	formats := make([]string, 0, len(registry))
	for format := range registry {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}
