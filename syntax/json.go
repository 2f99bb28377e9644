// Copyright © 2025 The Macex authors

package syntax

import (
	"encoding/json"
	"fmt"

	"github.com/luthersystems/macex/token"
)

// jsonNode is the wire form of a Node.  Node kinds marshal by name so
// encoded trees remain readable and stable across kind renumbering.
type jsonNode struct {
	Type   string          `json:"type"`
	Str    string          `json:"str,omitempty"`
	Int    int             `json:"int,omitempty"`
	Float  float64         `json:"float,omitempty"`
	Cells  []*Node         `json:"cells,omitempty"`
	Source *token.Location `json:"source,omitempty"`
}

var nodeTypesByName = func() map[string]NType {
	m := make(map[string]NType, int(NTypeMax))
	for t := NType(1); t < NTypeMax; t++ {
		m[t.String()] = t
	}
	return m
}()

// MarshalJSON implements json.Marshaler.
func (v *Node) MarshalJSON() ([]byte, error) {
	if v.Type == NInvalid || v.Type >= NTypeMax {
		return nil, fmt.Errorf("cannot encode node type: %v", v.Type)
	}
	return json.Marshal(&jsonNode{
		Type:   v.Type.String(),
		Str:    v.Str,
		Int:    v.Int,
		Float:  v.Float,
		Cells:  v.Cells,
		Source: v.Source,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Node) UnmarshalJSON(b []byte) error {
	var jn jsonNode
	if err := json.Unmarshal(b, &jn); err != nil {
		return err
	}
	typ, ok := nodeTypesByName[jn.Type]
	if !ok {
		return fmt.Errorf("unknown node type: %q", jn.Type)
	}
	*v = Node{
		Type:   typ,
		Str:    jn.Str,
		Int:    jn.Int,
		Float:  jn.Float,
		Cells:  jn.Cells,
		Source: jn.Source,
	}
	return nil
}

// DecodeTree decodes a JSON-encoded syntax tree.
func DecodeTree(b []byte) (*Node, error) {
	v := &Node{}
	if err := json.Unmarshal(b, v); err != nil {
		return nil, fmt.Errorf("invalid syntax tree encoding: %w", err)
	}
	return v, nil
}

// EncodeTree encodes a syntax tree as indented JSON.
func EncodeTree(v *Node) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
