// Package compiler implements the single-pass Pratt compiler: it lowers
// source text straight to bytecode, resolving every identifier through a
// scope stack as it goes, with no separate AST or resolver phase.
package compiler

import (
	"github.com/mna/bslang/lang/bytecode"
	"github.com/mna/bslang/lang/natives"
	"github.com/mna/bslang/lang/scanner"
	"github.com/mna/bslang/lang/token"
	"github.com/mna/bslang/lang/value"
)

// Compiler holds all state for a single compilation: the token stream, its
// one-token lookahead buffer, the growable bytecode buffer and constant
// pool it emits into, the scope stack, and the running local-slot offset.
type Compiler struct {
	src string
	sc  *scanner.Scanner

	lookahead    token.Token
	hasLookahead bool

	buf  *bytecode.Buffer
	pool *bytecode.ConstantPool

	scopes []*scope
	offset int

	negOneIdx    uint64
	haveNegOne   bool
	hasMain      bool
	entryConstID uint64
}

// Result is the output of a successful Compile: the bytecode buffer, the
// constant pool, and the constant-pool index of the entry function.
type Result struct {
	Buffer       *bytecode.Buffer
	Pool         *bytecode.ConstantPool
	EntryConstID uint64
}

// Compile compiles src into a Result, or returns the first *Error
// encountered. It is the sole entry point the embedding API's load()
// calls.
func Compile(src string) (*Result, error) {
	c := &Compiler{
		src:    src,
		sc:     scanner.New(src),
		buf:    &bytecode.Buffer{},
		pool:   &bytecode.ConstantPool{},
		scopes: []*scope{newScope()},
	}
	c.registerNatives()
	if err := c.source(); err != nil {
		return nil, err
	}
	if !c.hasMain {
		return nil, &Error{Kind: NoMainFunction, Msg: "no top-level fn main() { ... } was defined"}
	}
	return &Result{Buffer: c.buf, Pool: c.pool, EntryConstID: c.entryConstID}, nil
}

// registerNatives pre-registers the host-provided natives into the global
// scope before the first token is parsed, so that scripts can call them and
// cannot redeclare their names.
func (c *Compiler) registerNatives() {
	for _, b := range natives.Registry() {
		idx := c.pool.Add(value.NewNativeFunction(b.Name, b.ParamCount, b.Fn))
		c.scopes[0].declareGlobalConst(b.Name, idx)
	}
}

// --- token stream -----------------------------------------------------

func (c *Compiler) next() (token.Token, error) {
	var t token.Token
	if c.hasLookahead {
		t = c.lookahead
		c.hasLookahead = false
	} else {
		t = c.sc.Next()
	}
	if t.Kind == token.Error {
		return t, &Error{Kind: Scanner, Pos: token.PositionOf(c.src, t.From), Msg: "invalid token"}
	}
	return t, nil
}

func (c *Compiler) peek() (token.Token, error) {
	if !c.hasLookahead {
		t := c.sc.Next()
		if t.Kind == token.Error {
			return t, &Error{Kind: Scanner, Pos: token.PositionOf(c.src, t.From), Msg: "invalid token"}
		}
		c.lookahead = t
		c.hasLookahead = true
	}
	return c.lookahead, nil
}

func (c *Compiler) expect(kind token.Kind) (token.Token, error) {
	t, err := c.next()
	if err != nil {
		return t, err
	}
	if t.Kind != kind {
		return t, c.errAt(t, UnexpectedToken, "expected %s, got %s", kind, t.Kind)
	}
	return t, nil
}

func (c *Compiler) expectSingle(ch rune) (token.Token, error) {
	t, err := c.next()
	if err != nil {
		return t, err
	}
	if !t.Is(ch) {
		return t, c.errAt(t, UnexpectedToken, "expected %q, got %s", ch, t.Kind)
	}
	return t, nil
}

// --- emission helpers ---------------------------------------------------

func (c *Compiler) emit(op bytecode.Opcode)                    { c.buf.Emit(op) }
func (c *Compiler) emitArg(op bytecode.Opcode, operand uint64) { c.buf.EmitArg(op, operand) }

func (c *Compiler) konstIdx(v value.Value) uint64 { return c.pool.Add(v) }

func (c *Compiler) negOneConst() uint64 {
	if !c.haveNegOne {
		c.negOneIdx = c.pool.Add(value.Number(-1))
		c.haveNegOne = true
	}
	return c.negOneIdx
}

// --- scopes and locals ---------------------------------------------------

func (c *Compiler) pushScope() { c.scopes = append(c.scopes, newScope()) }

// popScope closes the innermost scope, emitting a pop(k) for the k locals
// it introduced (nothing when k is 0).
func (c *Compiler) popScope() {
	top := c.scopes[len(c.scopes)-1]
	k := top.size()
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.offset -= k
	if k > 0 {
		c.emitArg(bytecode.Pop, uint64(k))
	}
}

func (c *Compiler) declareLocal(tok token.Token) error {
	name := tok.Text(c.src)
	top := c.scopes[len(c.scopes)-1]
	if !top.declareLocal(name, uint64(c.offset)) {
		return c.errAt(tok, MultipleDefinition, "%q already declared in this scope", name)
	}
	c.offset++
	return nil
}

func (c *Compiler) declareGlobalFunc(tok token.Token, idx uint64) error {
	name := tok.Text(c.src)
	if !c.scopes[0].declareGlobalConst(name, idx) {
		return c.errAt(tok, MultipleDefinition, "%q already declared", name)
	}
	return nil
}
