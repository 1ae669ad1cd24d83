// This file is part of Atto-8 - https://github.com/Bricktech2000/Atto-8
//
// Copyright 2023 The Atto-8 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package asm

import (
	"fmt"
	"math/bits"
)

// NodeOp is the operator of a Node.
type NodeOp uint8

// Node operators.
const (
	NodeLabel NodeOp = iota
	NodeValue
	NodeAdd
	NodeSub
	NodeRot
	NodeOrr
	NodeAnd
	NodeXor
	NodeXnd
	NodeShl
	NodeShr
	NodeNot
)

var nodeOpNames = [...]string{"label", "value", "add", "sub", "rot", "orr", "and", "xor", "xnd", "shl", "shr", "not"}

// Node is an expression computable at assembly time. Binary operators compute
// B OP A, where A is the operand pushed last; unary operators apply to A. All
// arithmetic wraps around at 8 bits.
type Node struct {
	Op    NodeOp
	Label Label
	Value uint8
	A, B  *Node
}

// Value returns a literal node.
func Value(v uint8) *Node { return &Node{Op: NodeValue, Value: v} }

// LabelRef returns a node referencing l.
func LabelRef(l Label) *Node { return &Node{Op: NodeLabel, Label: l} }

// Binary returns the node computing b OP a.
func Binary(op NodeOp, a, b *Node) *Node { return &Node{Op: op, A: a, B: b} }

// Unary returns the node computing OP a.
func Unary(op NodeOp, a *Node) *Node { return &Node{Op: op, A: a} }

// Resolve evaluates n against labels. If n references a label missing from
// labels, ok is false and missing names the first such label.
func (n *Node) Resolve(labels map[Label]uint8) (v uint8, missing Label, ok bool) {
	switch n.Op {
	case NodeValue:
		return n.Value, Label{}, true
	case NodeLabel:
		v, ok = labels[n.Label]
		if !ok {
			return 0, n.Label, false
		}
		return v, Label{}, true
	}
	a, missing, ok := n.A.Resolve(labels)
	if !ok {
		return 0, missing, false
	}
	switch n.Op {
	case NodeShl:
		return a << 1, Label{}, true
	case NodeShr:
		return a >> 1, Label{}, true
	case NodeNot:
		return ^a, Label{}, true
	}
	b, missing, ok := n.B.Resolve(labels)
	if !ok {
		return 0, missing, false
	}
	switch n.Op {
	case NodeAdd:
		v = b + a
	case NodeSub:
		v = b - a
	case NodeRot:
		v = bits.RotateLeft8(b, int(a%8))
	case NodeOrr:
		v = b | a
	case NodeAnd:
		v = b & a
	case NodeXor:
		v = b ^ a
	case NodeXnd:
		v = 0
	default:
		panic(fmt.Sprintf("asm: unknown node operator %d", n.Op))
	}
	return v, Label{}, true
}

// constant evaluates n without any label.
func (n *Node) constant() (uint8, bool) {
	v, _, ok := n.Resolve(nil)
	return v, ok
}

// Equal reports whether n and m are structurally equal.
func (n *Node) Equal(m *Node) bool {
	if n == nil || m == nil {
		return n == m
	}
	if n.Op != m.Op {
		return false
	}
	switch n.Op {
	case NodeValue:
		return n.Value == m.Value
	case NodeLabel:
		return n.Label == m.Label
	}
	return n.A.Equal(m.A) && n.B.Equal(m.B)
}

// key returns a string that is equal for structurally equal nodes.
func (n *Node) key() string {
	switch n.Op {
	case NodeValue:
		return fmt.Sprintf("x%02X", n.Value)
	case NodeLabel:
		return n.Label.key()
	case NodeShl, NodeShr, NodeNot:
		return fmt.Sprintf("(%s %s)", nodeOpNames[n.Op], n.A.key())
	}
	return fmt.Sprintf("(%s %s %s)", nodeOpNames[n.Op], n.A.key(), n.B.key())
}

func (n *Node) String() string {
	switch n.Op {
	case NodeValue:
		return fmt.Sprintf("x%02X", n.Value)
	case NodeLabel:
		return n.Label.String()
	case NodeShl, NodeShr, NodeNot:
		return fmt.Sprintf("%s(%v)", nodeOpNames[n.Op], n.A)
	}
	return fmt.Sprintf("%s(%v, %v)", nodeOpNames[n.Op], n.A, n.B)
}
