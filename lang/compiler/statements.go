package compiler

import (
	"strconv"

	"github.com/mna/bslang/lang/bytecode"
	"github.com/mna/bslang/lang/token"
	"github.com/mna/bslang/lang/value"
)

// source compiles `fn_decl*`, the grammar's top-level production.
func (c *Compiler) source() error {
	for {
		t, err := c.peek()
		if err != nil {
			return err
		}
		if t.Kind == token.EOF {
			break
		}
		nt, err := c.next()
		if err != nil {
			return err
		}
		if nt.Kind != token.Fn {
			return c.errAt(nt, UnexpectedToken, "expected top-level fn declaration, got %s", nt.Kind)
		}
		if err := c.fnDecl(); err != nil {
			return err
		}
	}
	_, err := c.next() // consume EOF
	return err
}

// fnDecl compiles `'fn' IDENT '(' params? ')' '{' block '}'`. The function's
// own name is only bound into the global scope after its body has been
// compiled, so a function cannot call itself or a not-yet-declared sibling
// by name.
func (c *Compiler) fnDecl() error {
	idTok, err := c.expect(token.Identifier)
	if err != nil {
		return err
	}
	name := idTok.Text(c.src)

	savedOffset := c.offset
	c.offset = 0
	c.pushScope()

	if _, err := c.expectSingle('('); err != nil {
		return err
	}
	paramCount := 0
	t, err := c.peek()
	if err != nil {
		return err
	}
	if !t.Is(')') {
		for {
			pt, err := c.expect(token.Identifier)
			if err != nil {
				return err
			}
			if err := c.declareLocal(pt); err != nil {
				return err
			}
			paramCount++
			t, err := c.peek()
			if err != nil {
				return err
			}
			if !t.Is(',') {
				break
			}
			if _, err := c.next(); err != nil {
				return err
			}
		}
	}
	if _, err := c.expectSingle(')'); err != nil {
		return err
	}

	address := uint32(c.buf.Len())
	idx := c.konstIdx(value.NewBakhtFunction(name, paramCount, address))

	if _, err := c.expectSingle('{'); err != nil {
		return err
	}
	if err := c.block(); err != nil {
		return err
	}
	if _, err := c.next(); err != nil { // consume '}'
		return err
	}

	// Guard against falling off the end of a body with no explicit return.
	c.emit(bytecode.Nil)
	c.emit(bytecode.Ret)

	c.scopes = c.scopes[:len(c.scopes)-1]
	c.offset = savedOffset

	if err := c.declareGlobalFunc(idTok, idx); err != nil {
		return err
	}
	if name == "main" {
		c.hasMain = true
		c.entryConstID = idx
	}
	return nil
}

// block compiles a sequence of statements up to (but not including) the
// closing '}', in a fresh scope. Callers are responsible for the
// surrounding braces.
func (c *Compiler) block() error {
	c.pushScope()
	for {
		t, err := c.peek()
		if err != nil {
			return err
		}
		if t.Is('}') {
			break
		}
		if t.Kind == token.EOF {
			return c.errAt(t, UnexpectedToken, "unterminated block")
		}
		if err := c.stmt(); err != nil {
			return err
		}
	}
	c.popScope()
	return nil
}

func (c *Compiler) stmt() error {
	t, err := c.peek()
	if err != nil {
		return err
	}
	switch {
	case t.Is(';'): // empty statement
		_, err := c.next()
		return err
	case t.Is('{'):
		if _, err := c.next(); err != nil {
			return err
		}
		if err := c.block(); err != nil {
			return err
		}
		_, err := c.expectSingle('}')
		return err
	case t.Kind == token.Let:
		if _, err := c.next(); err != nil {
			return err
		}
		return c.letStmt()
	case t.Kind == token.Return:
		if _, err := c.next(); err != nil {
			return err
		}
		return c.returnStmt()
	case t.Kind == token.If:
		if _, err := c.next(); err != nil {
			return err
		}
		return c.ifStmt()
	case t.Kind == token.While:
		if _, err := c.next(); err != nil {
			return err
		}
		return c.whileStmt()
	default:
		return c.assignCall()
	}
}

func (c *Compiler) letStmt() error {
	for {
		if err := c.varDecl(); err != nil {
			return err
		}
		t, err := c.peek()
		if err != nil {
			return err
		}
		if !t.Is(',') {
			break
		}
		if _, err := c.next(); err != nil {
			return err
		}
	}
	return nil
}

// varDecl compiles the initializer before declaring the local, so the
// initializer of a declaration cannot refer to the name it is introducing:
// a use of that name resolves to an outer binding, if any.
func (c *Compiler) varDecl() error {
	idTok, err := c.expect(token.Identifier)
	if err != nil {
		return err
	}
	t, err := c.peek()
	if err != nil {
		return err
	}
	if t.Is('=') {
		if _, err := c.next(); err != nil {
			return err
		}
		if err := c.expr(); err != nil {
			return err
		}
	} else {
		c.emit(bytecode.Nil)
	}
	return c.declareLocal(idTok)
}

// returnStmt discards any further tokens up to the enclosing block's '}' or
// EOF, so trailing dead code after a return is skipped without ever being
// compiled.
func (c *Compiler) returnStmt() error {
	if err := c.expr(); err != nil {
		return err
	}
	c.emit(bytecode.Ret)
	depth := 0 // braces opened by the skipped tokens
	for {
		t, err := c.peek()
		if err != nil {
			return err
		}
		if t.Kind == token.EOF || (t.Is('}') && depth == 0) {
			return nil
		}
		if t.Is('{') {
			depth++
		} else if t.Is('}') {
			depth--
		}
		if _, err := c.next(); err != nil {
			return err
		}
	}
}

func (c *Compiler) ifStmt() error {
	if err := c.expr(); err != nil {
		return err
	}
	openTok, err := c.expectSingle('{')
	if err != nil {
		return err
	}
	cjmpAddr := c.buf.EmitBranch(bytecode.Cjmp)
	if err := c.block(); err != nil {
		return err
	}
	if _, err := c.expectSingle('}'); err != nil {
		return err
	}

	t, err := c.peek()
	if err != nil {
		return err
	}
	if t.Kind != token.Else {
		return c.patchBranch(openTok, cjmpAddr, uint32(c.buf.Len()))
	}

	if _, err := c.next(); err != nil {
		return err
	}
	jmpAddr := c.buf.EmitBranch(bytecode.Jmp)
	if err := c.patchBranch(openTok, cjmpAddr, uint32(c.buf.Len())); err != nil {
		return err
	}
	if _, err := c.expectSingle('{'); err != nil {
		return err
	}
	if err := c.block(); err != nil {
		return err
	}
	if _, err := c.expectSingle('}'); err != nil {
		return err
	}
	return c.patchBranch(openTok, jmpAddr, uint32(c.buf.Len()))
}

func (c *Compiler) whileStmt() error {
	loopStart := c.buf.Len()
	if err := c.expr(); err != nil {
		return err
	}
	if _, err := c.expectSingle('{'); err != nil {
		return err
	}
	cjmpAddr := c.buf.EmitBranch(bytecode.Cjmp)
	if err := c.block(); err != nil {
		return err
	}
	closeTok, err := c.expectSingle('}')
	if err != nil {
		return err
	}
	jmpAddr := c.buf.EmitBranch(bytecode.Jmp)
	if err := c.patchBranch(closeTok, jmpAddr, uint32(loopStart)); err != nil {
		return err
	}
	return c.patchBranch(closeTok, cjmpAddr, uint32(c.buf.Len()))
}

// assignState tracks the shape of the in-progress l-value/r-value chain an
// assign_call production is accumulating. Only a bare identifier or a chain
// ending in an index suffix is a valid assignment target.
type assignState int

const (
	stateRvalue assignState = iota
	stateCall
	stateIdentifier
	stateIndex
)

func (c *Compiler) assignCall() error {
	t, err := c.next()
	if err != nil {
		return err
	}

	var state assignState
	var idTok token.Token
	switch {
	case t.Is('('):
		if err := c.expr(); err != nil {
			return err
		}
		if _, err := c.expectSingle(')'); err != nil {
			return err
		}
		state = stateRvalue
	case t.Is('['):
		count, err := c.explist(']')
		if err != nil {
			return err
		}
		c.emitArg(bytecode.Anew, uint64(count))
		state = stateRvalue
	case t.Kind == token.Identifier:
		idTok = t
		state = stateIdentifier
	default:
		return c.errAt(t, UnexpectedToken, "expected an expression or assignment, got %s", t.Kind)
	}

	for {
		nt, err := c.peek()
		if err != nil {
			return err
		}
		switch {
		case nt.Is('='):
			if state != stateIdentifier && state != stateIndex {
				return c.errAt(nt, UnexpectedToken, "invalid assignment target")
			}
			if _, err := c.next(); err != nil {
				return err
			}
			if err := c.expr(); err != nil {
				return err
			}
			if state == stateIdentifier {
				return c.storeID(idTok)
			}
			c.emit(bytecode.Set)
			c.emitArg(bytecode.Pop, 1)
			return nil
		case nt.Is('['):
			if _, err := c.next(); err != nil {
				return err
			}
			if err := c.flushLValue(state, idTok); err != nil {
				return err
			}
			if err := c.expr(); err != nil {
				return err
			}
			if _, err := c.expectSingle(']'); err != nil {
				return err
			}
			state = stateIndex
		case nt.Is('('):
			if _, err := c.next(); err != nil {
				return err
			}
			if err := c.flushLValue(state, idTok); err != nil {
				return err
			}
			argc, err := c.explist(')')
			if err != nil {
				return err
			}
			c.emitArg(bytecode.Call, uint64(argc))
			state = stateCall
		default:
			if state == stateCall {
				c.emitArg(bytecode.Pop, 1)
				return nil
			}
			return c.errAt(nt, UnexpectedToken, "unexpected %s", nt.Kind)
		}
	}
}

// flushLValue emits the load/get needed to bring the pending l-value prefix
// onto the stack as a container, right before a new '[' or '(' suffix is
// appended.
func (c *Compiler) flushLValue(state assignState, idTok token.Token) error {
	switch state {
	case stateIdentifier:
		return c.loadID(idTok)
	case stateIndex:
		c.emit(bytecode.Get)
	}
	return nil
}

func (c *Compiler) loadID(t token.Token) error {
	name := t.Text(c.src)
	b, ok := resolve(c.scopes, name)
	if !ok {
		return c.errAt(t, UnknownIdentifier, "unknown identifier %q", name)
	}
	if b.kind == globalConstBinding {
		c.emitArg(bytecode.Konst, b.index)
	} else {
		c.emitArg(bytecode.Load, b.index)
	}
	return nil
}

func (c *Compiler) storeID(t token.Token) error {
	name := t.Text(c.src)
	b, ok := resolve(c.scopes, name)
	if !ok {
		return c.errAt(t, UnknownIdentifier, "unknown identifier %q", name)
	}
	if b.kind == globalConstBinding {
		return c.errAt(t, Immutable, "cannot assign to global %q", name)
	}
	c.emitArg(bytecode.Store, b.index)
	return nil
}

func (c *Compiler) explist(end rune) (int, error) {
	t, err := c.peek()
	if err != nil {
		return 0, err
	}
	if t.Is(end) {
		_, err := c.next()
		return 0, err
	}
	count := 0
	for {
		if err := c.expr(); err != nil {
			return 0, err
		}
		count++
		t, err := c.peek()
		if err != nil {
			return 0, err
		}
		if t.Is(end) {
			break
		}
		if _, err := c.expectSingle(','); err != nil {
			return 0, err
		}
	}
	_, err = c.next()
	return count, err
}

func (c *Compiler) patchBranch(tok token.Token, addr int, dest uint32) error {
	if err := c.buf.PatchBranch(addr, dest); err != nil {
		return c.errAt(tok, BranchTooFar, "%v", err)
	}
	return nil
}

// parseNumber parses a decimal digit sequence as a 32-bit float.
func parseNumber(text string) (float32, error) {
	f, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return 0, err
	}
	return float32(f), nil
}
