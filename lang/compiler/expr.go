package compiler

import (
	"github.com/mna/bslang/lang/bytecode"
	"github.com/mna/bslang/lang/token"
	"github.com/mna/bslang/lang/value"
)

const postfixPower = 59

// expr compiles a full expression via Pratt parsing.
func (c *Compiler) expr() error { return c.exprP(0) }

func (c *Compiler) exprP(pwr int) error {
	first, err := c.next()
	if err != nil {
		return err
	}

	switch {
	case first.Is('+') || first.Is('-'):
		if err := c.exprP(56); err != nil {
			return err
		}
		if first.Is('-') {
			c.emitArg(bytecode.Konst, c.negOneConst())
			c.emit(bytecode.Mult)
		}
	case first.Is('('):
		if err := c.expr(); err != nil {
			return err
		}
		if _, err := c.expectSingle(')'); err != nil {
			return err
		}
	case first.Is('['):
		count, err := c.explist(']')
		if err != nil {
			return err
		}
		c.emitArg(bytecode.Anew, uint64(count))
	default:
		if err := c.compileAtom(first); err != nil {
			return err
		}
	}

	for {
		nt, err := c.peek()
		if err != nil {
			return err
		}

		if nt.Kind == token.Single {
			switch nt.Ch {
			case '}', '{', ',', ')', ']', ';':
				return nil
			}
		} else if nt.Kind != token.Double {
			return nil
		}

		if nt.Is('(') || nt.Is('[') {
			if pwr > postfixPower {
				return nil
			}
			if _, err := c.next(); err != nil {
				return err
			}
			if nt.Is('(') {
				argc, err := c.explist(')')
				if err != nil {
					return err
				}
				c.emitArg(bytecode.Call, uint64(argc))
			} else {
				if err := c.expr(); err != nil {
					return err
				}
				if _, err := c.expectSingle(']'); err != nil {
					return err
				}
				c.emit(bytecode.Get)
			}
			continue
		}

		lp, rp, op, ok := infixInfo(nt, c.src)
		if !ok {
			return c.errAt(nt, UnexpectedToken, "unexpected %s", nt.Kind)
		}
		if pwr > lp {
			return nil
		}
		if _, err := c.next(); err != nil {
			return err
		}
		if err := c.exprP(rp); err != nil {
			return err
		}
		c.emit(op)
	}
}

// infixInfo returns the left/right binding power and opcode for an infix
// operator token. Comparison operators bind loosest, then additive, then
// multiplicative; all are left-associative.
func infixInfo(t token.Token, src string) (lp, rp int, op bytecode.Opcode, ok bool) {
	if t.Kind == token.Single {
		switch t.Ch {
		case '+':
			return 51, 52, bytecode.Add, true
		case '-':
			return 51, 52, bytecode.Sub, true
		case '*':
			return 53, 54, bytecode.Mult, true
		case '/':
			return 53, 54, bytecode.Div, true
		case '%':
			return 53, 54, bytecode.Mod, true
		case '<':
			return 49, 50, bytecode.Lt, true
		case '>':
			return 49, 50, bytecode.Gt, true
		}
		return 0, 0, 0, false
	}
	if t.Kind == token.Double {
		switch t.Text(src) {
		case "==":
			return 49, 50, bytecode.Eq, true
		case "!=":
			return 49, 50, bytecode.Ne, true
		case "<=":
			return 49, 50, bytecode.Le, true
		case ">=":
			return 49, 50, bytecode.Ge, true
		}
	}
	return 0, 0, 0, false
}

func (c *Compiler) compileAtom(t token.Token) error {
	switch t.Kind {
	case token.Number:
		n, err := parseNumber(t.Text(c.src))
		if err != nil {
			return c.errAt(t, UnexpectedToken, "invalid number literal %q", t.Text(c.src))
		}
		c.emitArg(bytecode.Konst, c.konstIdx(value.Number(n)))
	case token.Literal:
		text := t.Text(c.src)
		c.emitArg(bytecode.Konst, c.konstIdx(value.String(text[1:len(text)-1])))
	case token.True:
		c.emit(bytecode.True)
	case token.False:
		c.emit(bytecode.False)
	case token.Nil:
		c.emit(bytecode.Nil)
	case token.Identifier:
		return c.loadID(t)
	default:
		return c.errAt(t, UnexpectedToken, "unexpected %s in expression", t.Kind)
	}
	return nil
}
