// Package key provides keys of entities that are curated in a batch.
// A key is either a wannabe, a placeholder valid only inside one batch, or
// a permanent key allocated from a counter.
package key

import (
	"strconv"
	"strings"
)

// Kind is a kind of entity that receives its keys from its own counter.
type Kind string

const (
	// BR is a bibliographic resource.
	BR Kind = "br"

	// RA is a responsible agent.
	RA Kind = "ra"

	// AR is an agent role.
	AR Kind = "ar"

	// RE is a resource embodiment (page range).
	RE Kind = "re"

	// ID is an external identifier.
	ID Kind = "id"
)

// Kinds lists all kinds that have counters.
var Kinds = []Kind{BR, RA, AR, RE, ID}

const wannabePrefix = "wannabe_"

// Key identifies an entity during curation. The zero value is an absent
// key.
type Key struct {
	meta    string
	wnb     uint32
	wannabe bool
}

// Wannabe creates a batch-local placeholder key.
func Wannabe(n uint32) Key {
	return Key{wnb: n, wannabe: true}
}

// Permanent creates a key from a value allocated by a counter.
func Permanent(meta string) Key {
	return Key{meta: meta}
}

// Parse converts a string created by String back to a Key.
func Parse(s string) Key {
	if n, ok := strings.CutPrefix(s, wannabePrefix); ok {
		if i, err := strconv.ParseUint(n, 10, 32); err == nil {
			return Wannabe(uint32(i))
		}
	}
	return Permanent(s)
}

// IsWannabe is true for batch-local keys.
func (k Key) IsWannabe() bool {
	return k.wannabe
}

// IsZero is true for an absent key.
func (k Key) IsZero() bool {
	return !k.wannabe && k.meta == ""
}

// Meta returns the permanent value of the key, or an empty string for
// wannabes.
func (k Key) Meta() string {
	return k.meta
}

// String renders the key.
func (k Key) String() string {
	if k.wannabe {
		return wannabePrefix + strconv.FormatUint(uint64(k.wnb), 10)
	}
	return k.meta
}

// OMID renders a permanent value as an omid token of a given kind.
func OMID(kind Kind, meta string) string {
	return "omid:" + string(kind) + "/" + meta
}
