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
	"github.com/sirupsen/logrus"

	"github.com/Bricktech2000/Atto-8-sub000/isa"
)

// opType classifies roots by their effect on the stack.
type opType uint8

const (
	otOther opType = iota
	otNoOp
	otPush
	otPop
	otUnary
	otBinary
	otDual
)

func (r Root) opType() opType {
	if r.Kind == RootNode {
		return otPush
	}
	if r.Kind != RootInstruction {
		return otOther
	}
	switch op := r.Ins.Op; {
	case op == isa.OpBuf || op == isa.OpNop:
		return otNoOp
	case op == isa.OpLdo || op == isa.OpLds || op == isa.OpLdi || op == isa.OpPsh || op == isa.OpPhn:
		return otPush
	case op == isa.OpPop:
		return otPop
	case op.IsUnary() || op == isa.OpLda:
		return otUnary
	case op.IsBinary():
		return otBinary
	case op == isa.OpSwp:
		return otDual
	}
	return otOther
}

// isPlainPush reports whether r pushes a value that does not depend on the
// contents of the stack.
func (r Root) isPlainPush() bool {
	return r.Kind == RootNode || r.is(isa.OpPsh) || r.is(isa.OpPhn) || r.is(isa.OpLds)
}

// isFixedPush reports whether r pushes a value that depends neither on the
// stack contents nor on the stack pointer.
func (r Root) isFixedPush() bool {
	return r.Kind == RootNode || r.is(isa.OpPsh) || r.is(isa.OpPhn)
}

// A rule rewrites a window of roots. New roots it creates have Pos -1 and
// inherit the position of the first root in the window.
type rule func(w []Root) ([]Root, bool)

func mkIns(op isa.Op, arg uint8) Root { return insRoot(-1, isa.New(op, arg)) }

// mkNode folds constant expressions to a literal.
func mkNode(n *Node) Root {
	if v, ok := n.constant(); ok && n.Op != NodeValue {
		n = Value(v)
	}
	return nodeRoot(-1, n)
}

func nodeOpOf(op isa.Op) NodeOp { return NodeAdd + NodeOp(op-isa.OpAdd) }

func isConst(r Root, v uint8) bool {
	c, ok := r.nodeValue()
	return ok && c == v
}

// Phase A: fold pushes and operators into nodes and cancel operator pairs.
// Rules are indexed by window length and tried in order.
var phaseA = [7][]rule{
	1: {dropNoOp},
	2: {foldDirective, foldUnary, dropIdentity, shortenIncDec, cancelPair, splitDup, dropPushPop, dropDupSwap, dropCommutedSwap},
	3: {swapNodes, incSecond, sinkPop, hoistLoad, sinkLoad, clearPop, clearMasked, dropDeadBinary, dropSwapPops, foldBinary, forwardNode},
	4: {clearNip, foldDoubled, foldBinary, forwardNode},
	5: {foldBinary, forwardNode},
	6: {foldBinary, forwardNode},
}

// Phase B: turn repeated nodes into stack loads.
var phaseB = [7][]rule{
	2: {storeSwapPop, reuseNode},
	3: {reuseNode},
	4: {reuseNode},
	5: {reuseNode},
	6: {reuseNode},
}

func dropNoOp(w []Root) ([]Root, bool) {
	return nil, w[0].opType() == otNoOp
}

func foldDirective(w []Root) ([]Root, bool) {
	switch {
	case w[0].Kind == RootNode && w[1].Kind == RootConst:
		return w[:1], true
	case w[0].Kind == RootInstruction && w[1].Kind == RootDyn && !w[1].Bound:
		return []Root{{Kind: RootDyn, Pos: -1, Ins: w[0].Ins, Bound: true}}, true
	case w[0].Kind == RootNode && w[1].Kind == RootOrg && !w[1].Bound:
		return []Root{{Kind: RootOrg, Pos: -1, Node: w[0].Node, Bound: true}}, true
	}
	return nil, false
}

func foldUnary(w []Root) ([]Root, bool) {
	if w[0].Kind != RootNode || w[1].Kind != RootInstruction {
		return nil, false
	}
	x := w[0].Node
	var n *Node
	switch w[1].Ins.Op {
	case isa.OpInc:
		n = Binary(NodeAdd, Value(1), x)
	case isa.OpDec:
		n = Binary(NodeSub, Value(1), x)
	case isa.OpNeg:
		n = Binary(NodeSub, x, Value(0))
	case isa.OpShl:
		n = Unary(NodeShl, x)
	case isa.OpShr:
		n = Unary(NodeShr, x)
	case isa.OpNot:
		n = Unary(NodeNot, x)
	default:
		return nil, false
	}
	return []Root{mkNode(n)}, true
}

func dropIdentity(w []Root) ([]Root, bool) {
	v, ok := w[0].nodeValue()
	if !ok || w[1].opType() != otBinary {
		return nil, false
	}
	switch w[1].Ins.Op {
	case isa.OpAdd, isa.OpSub, isa.OpXor, isa.OpOrr:
		return nil, v == 0
	case isa.OpAnd:
		return nil, v == 0xFF
	case isa.OpRot:
		return nil, v%8 == 0
	}
	return nil, false
}

func shortenIncDec(w []Root) ([]Root, bool) {
	if !isConst(w[0], 1) {
		return nil, false
	}
	switch {
	case w[1].isIns(isa.New(isa.OpAdd, 1)):
		return []Root{mkIns(isa.OpInc, 0)}, true
	case w[1].isIns(isa.New(isa.OpSub, 1)):
		return []Root{mkIns(isa.OpDec, 0)}, true
	}
	return nil, false
}

func cancelPair(w []Root) ([]Root, bool) {
	if w[0].Kind != RootInstruction || w[1].Kind != RootInstruction {
		return nil, false
	}
	switch a, b := w[0].Ins.Op, w[1].Ins.Op; {
	case a == isa.OpInc && b == isa.OpDec, a == isa.OpDec && b == isa.OpInc:
		return nil, true
	case a == b && (a == isa.OpNeg || a == isa.OpNot || a == isa.OpSwp):
		return nil, true
	}
	return nil, false
}

func splitDup(w []Root) ([]Root, bool) {
	if w[0].Kind == RootNode && w[1].isIns(isa.New(isa.OpLdo, 0)) {
		return []Root{w[0], mkNode(w[0].Node)}, true
	}
	return nil, false
}

func dropPushPop(w []Root) ([]Root, bool) {
	if w[1].opType() != otPop {
		return nil, false
	}
	switch w[0].opType() {
	case otPush:
		return nil, true
	case otUnary:
		return w[1:], true
	}
	return nil, false
}

func dropDupSwap(w []Root) ([]Root, bool) {
	if w[0].isIns(isa.New(isa.OpLdo, 0)) && w[1].is(isa.OpSwp) {
		return w[:1], true
	}
	return nil, false
}

func dropCommutedSwap(w []Root) ([]Root, bool) {
	if !w[0].is(isa.OpSwp) || w[1].opType() != otBinary || w[1].Ins.Arg != 1 {
		return nil, false
	}
	switch w[1].Ins.Op {
	case isa.OpAdd, isa.OpOrr, isa.OpAnd, isa.OpXor, isa.OpXnd:
		return w[1:], true
	}
	return nil, false
}

func swapNodes(w []Root) ([]Root, bool) {
	if w[0].Kind == RootNode && w[1].Kind == RootNode && w[2].is(isa.OpSwp) {
		return []Root{w[1], w[0]}, true
	}
	return nil, false
}

func incSecond(w []Root) ([]Root, bool) {
	if !w[0].is(isa.OpSwp) || !w[2].is(isa.OpSwp) {
		return nil, false
	}
	switch {
	case w[1].is(isa.OpInc):
		return []Root{mkNode(Value(1)), mkIns(isa.OpAdd, 2)}, true
	case w[1].is(isa.OpDec):
		return []Root{mkNode(Value(1)), mkIns(isa.OpSub, 2)}, true
	}
	return nil, false
}

func sinkPop(w []Root) ([]Root, bool) {
	if w[0].is(isa.OpLdo) && w[0].Ins.Arg >= 1 && w[1].is(isa.OpSwp) && w[2].is(isa.OpPop) {
		return []Root{w[2], mkIns(isa.OpLdo, w[0].Ins.Arg-1)}, true
	}
	return nil, false
}

// hoistLoad rewrites "p ldo(k) swp" as "ldo(k-1) p".
func hoistLoad(w []Root) ([]Root, bool) {
	if w[0].isFixedPush() && w[1].is(isa.OpLdo) && w[1].Ins.Arg >= 1 && w[2].is(isa.OpSwp) {
		return []Root{mkIns(isa.OpLdo, w[1].Ins.Arg-1), w[0]}, true
	}
	return nil, false
}

// sinkLoad rewrites "ldo(k) p swp" as "p ldo(k+1)".
func sinkLoad(w []Root) ([]Root, bool) {
	if w[0].is(isa.OpLdo) && w[0].Ins.Arg < 0x0F && w[1].isFixedPush() && w[2].is(isa.OpSwp) {
		return []Root{w[1], mkIns(isa.OpLdo, w[0].Ins.Arg+1)}, true
	}
	return nil, false
}

func clearPop(w []Root) ([]Root, bool) {
	if !w[0].is(isa.OpPop) || !isConst(w[1], 0) || !w[2].is(isa.OpSto) {
		return nil, false
	}
	size := w[2].Ins.Arg + 1
	if !isa.ValidSize(size) {
		return nil, false
	}
	return []Root{mkIns(isa.OpXnd, size)}, true
}

// clearNip is clearPop spelled with the "swp pop" that phase B turns into
// sto0.
func clearNip(w []Root) ([]Root, bool) {
	if w[0].is(isa.OpPop) && isConst(w[1], 0) && w[2].is(isa.OpSwp) && w[3].is(isa.OpPop) {
		return []Root{mkIns(isa.OpXnd, 1)}, true
	}
	return nil, false
}

func clearMasked(w []Root) ([]Root, bool) {
	v, ok := w[0].nodeValue()
	if !ok {
		return nil, false
	}
	and1, orr1 := isa.New(isa.OpAnd, 1), isa.New(isa.OpOrr, 1)
	switch {
	case v == 0x01 && w[1].isIns(and1) && w[2].is(isa.OpShr),
		v == 0x80 && w[1].isIns(and1) && w[2].is(isa.OpShl),
		v == 0xFF && w[1].isIns(orr1) && w[2].is(isa.OpNot):
		return []Root{w[0], mkIns(isa.OpXnd, 1)}, true
	}
	return nil, false
}

func dropDeadBinary(w []Root) ([]Root, bool) {
	if w[0].opType() == otPush && w[1].opType() == otBinary && w[1].Ins.Arg == 1 && w[2].opType() == otPop {
		return w[2:], true
	}
	return nil, false
}

func dropSwapPops(w []Root) ([]Root, bool) {
	if w[0].is(isa.OpSwp) && w[1].is(isa.OpPop) && w[2].is(isa.OpPop) {
		return w[1:], true
	}
	return nil, false
}

// foldBinary folds "Node a, k plain pushes, Node b, op(k+1)", where op
// targets a, into a single node followed by the pushes.
func foldBinary(w []Root) ([]Root, bool) {
	n := len(w)
	first, last, op := w[0], w[n-2], w[n-1]
	if first.Kind != RootNode || last.Kind != RootNode || op.opType() != otBinary || int(op.Ins.Arg) != n-2 {
		return nil, false
	}
	mid := w[1 : n-2]
	for _, r := range mid {
		if !r.isPlainPush() {
			return nil, false
		}
	}
	out := []Root{mkNode(Binary(nodeOpOf(op.Ins.Op), last.Node, first.Node))}
	return append(out, mid...), true
}

// forwardNode replaces "Node a, k pushes, ldo(k)" with a second push of a.
func forwardNode(w []Root) ([]Root, bool) {
	n := len(w)
	if w[0].Kind != RootNode || !w[n-1].isIns(isa.New(isa.OpLdo, uint8(n-2))) {
		return nil, false
	}
	for _, r := range w[1 : n-1] {
		if r.opType() != otPush {
			return nil, false
		}
	}
	out := append([]Root{}, w[:n-1]...)
	return append(out, nodeRoot(w[n-1].Pos, w[0].Node)), true
}

// foldDoubled merges "Node a, op S, Node b, op S" chains.
func foldDoubled(w []Root) ([]Root, bool) {
	if w[0].Kind != RootNode || w[2].Kind != RootNode ||
		w[1].opType() != otBinary || w[3].opType() != otBinary || w[1].Ins.Arg != w[3].Ins.Arg {
		return nil, false
	}
	a, b := w[0].Node, w[2].Node
	op1, op2, size := w[1].Ins.Op, w[3].Ins.Op, w[1].Ins.Arg
	combined := func(n *Node, op isa.Op) ([]Root, bool) {
		return []Root{mkNode(n), mkIns(op, size)}, true
	}
	if op1 == op2 {
		switch op1 {
		case isa.OpAdd, isa.OpSub, isa.OpRot:
			return combined(Binary(NodeAdd, b, a), op1)
		case isa.OpOrr, isa.OpAnd, isa.OpXor:
			return combined(Binary(nodeOpOf(op1), b, a), op1)
		case isa.OpXnd:
			return w[:2], true
		}
	}
	switch {
	case op1 == isa.OpAdd && op2 == isa.OpSub:
		return combined(Binary(NodeSub, a, b), isa.OpSub)
	case op1 == isa.OpSub && op2 == isa.OpAdd:
		return combined(Binary(NodeSub, a, b), isa.OpAdd)
	}
	av, aok := a.constant()
	bv, bok := b.constant()
	if !aok || !bok {
		return nil, false
	}
	andOrr := op1 == isa.OpAnd && op2 == isa.OpOrr
	orrAnd := op1 == isa.OpOrr && op2 == isa.OpAnd
	switch {
	case (andOrr || orrAnd) && av^bv == 0xFF:
		return w[2:], true
	case (andOrr || orrAnd) && av == bv:
		return []Root{w[0], mkIns(isa.OpSto, size-1)}, true
	}
	return nil, false
}

func storeSwapPop(w []Root) ([]Root, bool) {
	if w[0].is(isa.OpSwp) && w[1].is(isa.OpPop) {
		return []Root{mkIns(isa.OpSto, 0)}, true
	}
	return nil, false
}

// reuseNode replaces the second of two equal nodes separated by at most four
// pushes with a load from the stack.
func reuseNode(w []Root) ([]Root, bool) {
	n := len(w)
	if w[0].Kind != RootNode || w[n-1].Kind != RootNode || !w[0].Node.Equal(w[n-1].Node) {
		return nil, false
	}
	for _, r := range w[1 : n-1] {
		if r.opType() != otPush {
			return nil, false
		}
	}
	out := append([]Root{}, w[:n-1]...)
	return append(out, insRoot(w[n-1].Pos, isa.New(isa.OpLdo, uint8(n-2)))), true
}

// pinned reports whether the root at i is claimed by a following @dyn
// directive and must not be rewritten.
func pinned(roots []Root, i int) bool {
	return i < len(roots) && roots[i].Kind == RootDyn && !roots[i].Bound
}

// rewrite makes one pass per window length, matching leftmost and without
// overlap.
func rewrite(roots []Root, rules *[7][]rule) ([]Root, bool) {
	changed := false
	for n := 1; n < len(rules); n++ {
		if len(rules[n]) == 0 || len(roots) < n {
			continue
		}
		out := make([]Root, 0, len(roots))
		for i := 0; i < len(roots); {
			if i+n <= len(roots) && !pinned(roots, i+n) {
				if rep, ok := applyRules(rules[n], roots[i:i+n]); ok {
					out = append(out, rep...)
					i += n
					changed = true
					continue
				}
			}
			out = append(out, roots[i])
			i++
		}
		roots = out
	}
	return roots, changed
}

func applyRules(rules []rule, w []Root) ([]Root, bool) {
	for _, r := range rules {
		rep, ok := r(w)
		if !ok {
			continue
		}
		rep = append([]Root(nil), rep...)
		for i := range rep {
			if rep[i].Pos < 0 {
				rep[i].Pos = w[0].Pos
			}
		}
		return rep, true
	}
	return nil, false
}

func fixpoint(roots []Root, rules *[7][]rule, phase string) []Root {
	passes := 0
	for changed := true; changed; passes++ {
		roots, changed = rewrite(roots, rules)
	}
	logger.WithFields(logrus.Fields{"phase": phase, "passes": passes, "roots": len(roots)}).Debug("optimizer reached fixed point")
	return roots
}

// maxRounds bounds the number of phase A then phase B rounds in optimize.
const maxRounds = 8

// optimize runs phase A to a fixed point, then phase B, and repeats both
// until a round leaves the sequence unchanged.
func optimize(roots []Root) []Root {
	for round := 1; ; round++ {
		next := fixpoint(fixpoint(roots, &phaseA, "fold"), &phaseB, "reuse")
		if rootsEqual(next, roots) || round == maxRounds {
			logger.WithField("rounds", round).Debug("optimizer done")
			return next
		}
		roots = next
	}
}
