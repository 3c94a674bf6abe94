package expr

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Parse reads a tiny S-expression grammar — e.g. "(min (+ x 1) y)" or
// "(sqrt (+ (* x x) (* y y)))" — into a Context plus the root NodeID.
//
// Grammar: an atom is either a float literal, "x"/"y"/"z" (case-insensitive),
// or an operator keyword when it appears in head position. A form is
// "(op arg...)". Recognized operators: +, -, *, neg, abs, recip, sqrt,
// square, min, max.
func Parse(src string) (*Context, NodeID, error) {
	toks := tokenize(src)
	if len(toks) == 0 {
		return nil, 0, errors.New("expr: empty input")
	}
	p := &parser{toks: toks}
	ctx := NewContext()
	root, err := p.parseForm(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, "expr: parse")
	}
	if p.pos != len(p.toks) {
		return nil, 0, errors.Errorf("expr: unexpected trailing input at token %d (%q)", p.pos, p.toks[p.pos])
	}
	return ctx, root, nil
}

func tokenize(src string) []string {
	src = strings.ReplaceAll(src, "(", " ( ")
	src = strings.ReplaceAll(src, ")", " ) ")
	return strings.Fields(src)
}

type parser struct {
	toks []string
	pos  int
}

func (p *parser) peek() (string, bool) {
	if p.pos >= len(p.toks) {
		return "", false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (string, error) {
	tok, ok := p.peek()
	if !ok {
		return "", errors.New("expr: unexpected end of input")
	}
	p.pos++
	return tok, nil
}

// parseForm parses one atom or one fully-parenthesized form.
func (p *parser) parseForm(ctx *Context) (NodeID, error) {
	tok, err := p.next()
	if err != nil {
		return 0, err
	}
	if tok != "(" {
		return p.parseAtom(ctx, tok)
	}

	op, err := p.next()
	if err != nil {
		return 0, err
	}

	var args []NodeID
	for {
		t, ok := p.peek()
		if !ok {
			return 0, errors.New("expr: unterminated form")
		}
		if t == ")" {
			p.pos++
			break
		}
		arg, err := p.parseForm(ctx)
		if err != nil {
			return 0, err
		}
		args = append(args, arg)
	}
	return buildOp(ctx, op, args)
}

func (p *parser) parseAtom(ctx *Context, tok string) (NodeID, error) {
	switch strings.ToLower(tok) {
	case "x":
		return ctx.X(), nil
	case "y":
		return ctx.Y(), nil
	case "z":
		return ctx.Z(), nil
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "expr: %q is neither a variable nor a number", tok)
	}
	return ctx.Const(v), nil
}

func buildOp(ctx *Context, op string, args []NodeID) (NodeID, error) {
	unary := func(f func(NodeID) NodeID) (NodeID, error) {
		if len(args) != 1 {
			return 0, errors.Errorf("expr: %q takes exactly 1 argument, got %d", op, len(args))
		}
		return f(args[0]), nil
	}
	binary := func(f func(a, b NodeID) NodeID) (NodeID, error) {
		if len(args) != 2 {
			return 0, errors.Errorf("expr: %q takes exactly 2 arguments, got %d", op, len(args))
		}
		return f(args[0], args[1]), nil
	}

	switch op {
	case "+":
		if len(args) == 0 {
			return 0, errors.New(`expr: "+" needs at least 1 argument`)
		}
		acc := args[0]
		for _, a := range args[1:] {
			acc = ctx.Add(acc, a)
		}
		return acc, nil
	case "*":
		if len(args) == 0 {
			return 0, errors.New(`expr: "*" needs at least 1 argument`)
		}
		acc := args[0]
		for _, a := range args[1:] {
			acc = ctx.Mul(acc, a)
		}
		return acc, nil
	case "-":
		switch len(args) {
		case 1:
			return ctx.Neg(args[0]), nil
		case 2:
			return ctx.Sub(args[0], args[1]), nil
		default:
			return 0, errors.Errorf(`expr: "-" takes 1 or 2 arguments, got %d`, len(args))
		}
	case "neg":
		return unary(ctx.Neg)
	case "abs":
		return unary(ctx.Abs)
	case "recip":
		return unary(ctx.Recip)
	case "sqrt":
		return unary(ctx.Sqrt)
	case "square":
		return unary(ctx.Square)
	case "min":
		return binary(ctx.Min)
	case "max":
		return binary(ctx.Max)
	default:
		return 0, errors.Errorf("expr: unknown operator %q", op)
	}
}
