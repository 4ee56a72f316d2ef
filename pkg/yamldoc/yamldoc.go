// Package yamldoc loads a YAML document into a position-preserving tree.
// Every mapping key and sequence element carries the source line/column it
// came from, so validation diagnostics can cite accurate positions. The
// tree is built once per load and never mutated.
package yamldoc

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrParse indicates the file is not valid YAML. It is fatal for the
// current file: validation halts and reports only the parse failure.
var ErrParse = errors.New("invalid YAML document")

// Type names reported by Node.TypeName.
const (
	TypeString    = "string"
	TypeInt       = "int"
	TypeFloat     = "float"
	TypeBool      = "bool"
	TypeTimestamp = "timestamp"
	TypeNull      = "null"
	TypeMap       = "map"
	TypeList      = "list"
	TypeUnknown   = "unknown"
)

// Document is a parsed YAML file with positional metadata.
type Document struct {
	// File is the source file path.
	File string

	root *Node
}

// Node is one tree node with its source provenance. Line and Column are
// 0-based; for a mapping value the position is that of its key, falling
// back to the enclosing node's position when the key carries none.
type Node struct {
	yn *yaml.Node

	// Line is the 0-based provenance line.
	Line int

	// Column is the 0-based provenance column.
	Column int
}

// Entry is one mapping entry in document order.
type Entry struct {
	Key  string
	Node *Node
}

// Load parses the YAML file at path.
func Load(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	n := &root
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, fmt.Errorf("%w: %s: empty document", ErrParse, path)
		}
		n = root.Content[0]
	}

	return &Document{
		File: path,
		root: wrap(n, n.Line-1, n.Column-1),
	}, nil
}

// Root returns the document's top-level node.
func (d *Document) Root() *Node {
	return d.root
}

// Section looks up a top-level mapping key.
func (d *Document) Section(name string) (*Node, bool) {
	return d.root.Get(name)
}

// wrap builds a Node, substituting the fallback position when the
// yaml node has no recorded one. Provenance never goes below (0,0); a
// zero-value node handed a zero-value fallback still renders as 1:1.
func wrap(yn *yaml.Node, fallbackLine, fallbackCol int) *Node {
	line, col := fallbackLine, fallbackCol
	if yn.Line > 0 {
		line = yn.Line - 1
		col = yn.Column - 1
	}
	if line < 0 {
		line = 0
	}
	if col < 0 {
		col = 0
	}
	return &Node{yn: yn, Line: line, Column: col}
}

// Get looks up a mapping key. The returned node's provenance is the key's
// own position, or this node's position when the key has none.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.yn.Kind != yaml.MappingNode {
		return nil, false
	}
	content := n.yn.Content
	for i := 0; i+1 < len(content); i += 2 {
		if content[i].Value != key {
			continue
		}
		child := wrap(content[i+1], n.Line, n.Column)
		if content[i].Line > 0 {
			child.Line = content[i].Line - 1
			child.Column = content[i].Column - 1
		}
		return child, true
	}
	return nil, false
}

// Entries returns the mapping entries in document order.
func (n *Node) Entries() []Entry {
	if n == nil || n.yn.Kind != yaml.MappingNode {
		return nil
	}
	content := n.yn.Content
	entries := make([]Entry, 0, len(content)/2)
	for i := 0; i+1 < len(content); i += 2 {
		child := wrap(content[i+1], n.Line, n.Column)
		if content[i].Line > 0 {
			child.Line = content[i].Line - 1
			child.Column = content[i].Column - 1
		}
		entries = append(entries, Entry{Key: content[i].Value, Node: child})
	}
	return entries
}

// Items returns the sequence elements in document order.
func (n *Node) Items() []*Node {
	if n == nil || n.yn.Kind != yaml.SequenceNode {
		return nil
	}
	items := make([]*Node, 0, len(n.yn.Content))
	for _, c := range n.yn.Content {
		items = append(items, wrap(c, n.Line, n.Column))
	}
	return items
}

// IsMapping reports whether the node is a mapping.
func (n *Node) IsMapping() bool {
	return n != nil && n.yn.Kind == yaml.MappingNode
}

// IsSequence reports whether the node is a sequence.
func (n *Node) IsSequence() bool {
	return n != nil && n.yn.Kind == yaml.SequenceNode
}

// StringValue returns the node's scalar string value.
func (n *Node) StringValue() (string, bool) {
	if n == nil || n.yn.Kind != yaml.ScalarNode || n.yn.Tag != "!!str" {
		return "", false
	}
	return n.yn.Value, true
}

// TypeName returns the runtime type name of the node's value.
func (n *Node) TypeName() string {
	if n == nil {
		return TypeUnknown
	}
	switch n.yn.Kind {
	case yaml.MappingNode:
		return TypeMap
	case yaml.SequenceNode:
		return TypeList
	case yaml.ScalarNode:
		switch n.yn.Tag {
		case "!!str":
			return TypeString
		case "!!int":
			return TypeInt
		case "!!float":
			return TypeFloat
		case "!!bool":
			return TypeBool
		case "!!timestamp":
			return TypeTimestamp
		case "!!null":
			return TypeNull
		}
	case yaml.AliasNode:
		if n.yn.Alias != nil {
			return wrap(n.yn.Alias, n.Line, n.Column).TypeName()
		}
	}
	return TypeUnknown
}
