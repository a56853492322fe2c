package deq

import "sort"

// Definition is a dictionary entry: either a built-in operation or a
// user-defined quotation.
type Definition struct {
	Name string
	Body *Quotation // nil for built-ins
	op   opcode
}

// IsBuiltin returns true if the definition dispatches to native logic.
func (def Definition) IsBuiltin() bool { return def.Body == nil }

func (def Definition) String() string {
	if def.IsBuiltin() {
		return def.Name + " <builtin>"
	}
	return def.Name + " " + def.Body.String()
}

// Dictionary maps word names to definitions. It is a single flat table:
// lookup is by exact name, redefinition replaces the prior entry.
type Dictionary struct {
	words map[string]Definition
}

// NewDictionary returns a dictionary seeded with every built-in word.
func NewDictionary() *Dictionary {
	dict := &Dictionary{words: make(map[string]Definition, opMax)}
	for op := opcode(1); op < opMax; op++ {
		dict.registerBuiltin(opNames[op], op)
	}
	return dict
}

func (dict *Dictionary) registerBuiltin(name string, op opcode) {
	dict.words[name] = Definition{Name: name, op: op}
}

// Define inserts or replaces a user word.
func (dict *Dictionary) Define(name string, body *Quotation) {
	if dict.words == nil {
		dict.words = make(map[string]Definition)
	}
	dict.words[name] = Definition{Name: name, Body: body}
}

// Forget removes a user word, bringing back the built-in of the same name if
// the word had replaced one. Built-ins and undefined names are UnknownWord
// errors.
func (dict *Dictionary) Forget(name string) error {
	if def, defined := dict.words[name]; !defined || def.IsBuiltin() {
		return &Error{Kind: UnknownWord, Word: name}
	}
	delete(dict.words, name)
	for op := opcode(1); op < opMax; op++ {
		if opNames[op] == name {
			dict.registerBuiltin(name, op)
			break
		}
	}
	return nil
}

// Resolve returns the definition bound to name, or an UnknownWord error.
func (dict *Dictionary) Resolve(name string) (Definition, error) {
	if def, defined := dict.words[name]; defined {
		return def, nil
	}
	return Definition{}, &Error{Kind: UnknownWord, Word: name}
}

// Len returns the number of defined words, built-ins included.
func (dict *Dictionary) Len() int { return len(dict.words) }

// Names returns every defined word name in sorted order.
func (dict *Dictionary) Names() []string {
	names := make([]string, 0, len(dict.words))
	for name := range dict.words {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UserWords returns the user-defined entries sorted by name.
func (dict *Dictionary) UserWords() []Definition {
	var defs []Definition
	for _, name := range dict.Names() {
		if def := dict.words[name]; !def.IsBuiltin() {
			defs = append(defs, def)
		}
	}
	return defs
}

// Clone returns an independent copy; quotation bodies are immutable and
// shared.
func (dict *Dictionary) Clone() *Dictionary {
	c := &Dictionary{words: make(map[string]Definition, len(dict.words))}
	for name, def := range dict.words {
		c.words[name] = def
	}
	return c
}
