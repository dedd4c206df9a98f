// Package names maps name strings to unique integer ids.
//
// Most of the compiler uses this package either directly or indirectly: the
// scanner interns every token it reads, the parser compares section keywords
// by id, and the simulator collaborators mint their result codes from the
// same table so that the semantic error handler can build one unambiguous
// lookup without a central registry.
package names

// ID is an index into a Table. Ids are insertion indexes and are stable for
// the lifetime of the table; ids from different tables must never be mixed.
type ID int

// None marks an absent id, used for optional ports and properties.
const None ID = -1

// Code is a result code minted by Allocate. Codes are globally unique within
// one table instance and are never reused.
type Code int

// Table is an append-only interning table plus a monotonic result-code
// counter.
type Table struct {
	list  []string
	index map[string]ID
	codes int
}

func NewTable() *Table {
	return &Table{index: make(map[string]ID)}
}

// Intern returns the id for s, inserting it if not already present.
func (t *Table) Intern(s string) ID {
	if id, ok := t.index[s]; ok {
		return id
	}
	id := ID(len(t.list))
	t.list = append(t.list, s)
	t.index[s] = id
	return id
}

// InternAll interns every string in ss and returns the ids in order.
func (t *Table) InternAll(ss []string) []ID {
	ids := make([]ID, len(ss))
	for i, s := range ss {
		ids[i] = t.Intern(s)
	}
	return ids
}

// Query returns the id for s without inserting it.
func (t *Table) Query(s string) (ID, bool) {
	id, ok := t.index[s]
	return id, ok
}

// Resolve returns the string for id.
func (t *Table) Resolve(id ID) (string, bool) {
	if id < 0 || int(id) >= len(t.list) {
		return "", false
	}
	return t.list[id], true
}

// Len reports how many names the table holds.
func (t *Table) Len() int {
	return len(t.list)
}

// Allocate mints n fresh result codes. Successive calls never return the
// same code twice, which lets independent collaborators define their own
// codes without coordinating.
func (t *Table) Allocate(n int) []Code {
	codes := make([]Code, n)
	for i := range codes {
		codes[i] = Code(t.codes)
		t.codes++
	}
	return codes
}
