package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// maxExpressionLen bounds calculator input size.
const maxExpressionLen = 500

// Calculator evaluates arithmetic expressions with a small recursive
// descent parser. It supports + - * / // % ^, unary +/-, parentheses,
// the functions abs, round, min, max, sqrt, log, log10, sin, cos, tan,
// and the constants pi and e.
type Calculator struct{}

// NewCalculator creates a Calculator tool.
func NewCalculator() *Calculator { return &Calculator{} }

func (c *Calculator) Name() string { return "calculator" }

func (c *Calculator) Description() string {
	return "Evaluate a mathematical expression. Supports: +, -, *, /, //, %, ^ " +
		"and functions: abs, round, min, max, sqrt, log, log10, sin, cos, tan. " +
		"Constants: pi, e."
}

func (c *Calculator) ParametersSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": "Mathematical expression to evaluate, e.g. '2 + 3 * 4'",
			},
		},
		"required": []string{"expression"},
	}
}

func (c *Calculator) Execute(arguments map[string]any) (string, error) {
	expr, _ := arguments["expression"].(string)
	if expr == "" {
		return "", fmt.Errorf("missing or invalid 'expression' argument")
	}
	if len(expr) > maxExpressionLen {
		return "", fmt.Errorf("expression too long (max %d characters)", maxExpressionLen)
	}

	p := &exprParser{input: expr}
	v, err := p.parse()
	if err != nil {
		return "", fmt.Errorf("invalid expression: %w", err)
	}
	return formatNumber(v), nil
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

var calcConstants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// exprParser is a recursive descent parser over a fixed operator grammar:
//
//	expr   := term (('+' | '-') term)*
//	term   := power (('*' | '/' | '//' | '%') power)*
//	power  := unary ('^' power)?          right associative
//	unary  := ('+' | '-') unary | atom
//	atom   := number | ident | ident '(' expr (',' expr)* ')' | '(' expr ')'
type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parse() (float64, error) {
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return v, nil
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.consume("+"):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left += right
		case p.consume("-"):
			right, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parsePower()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		switch {
		case p.consume("//"):
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left = math.Floor(left / right)
		case p.consume("*"):
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			left *= right
		case p.consume("/"):
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		case p.consume("%"):
			right, err := p.parsePower()
			if err != nil {
				return 0, err
			}
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left = math.Mod(left, right)
		default:
			return left, nil
		}
	}
}

func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.consume("^") {
		exp, err := p.parsePower()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpace()
	if p.consume("-") {
		v, err := p.parseUnary()
		return -v, err
	}
	if p.consume("+") {
		return p.parseUnary()
	}
	return p.parseAtom()
}

func (p *exprParser) parseAtom() (float64, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	ch := p.input[p.pos]
	switch {
	case ch == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if !p.consume(")") {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		return v, nil
	case unicode.IsDigit(rune(ch)) || ch == '.':
		return p.parseNumber()
	case unicode.IsLetter(rune(ch)):
		return p.parseIdent()
	default:
		return 0, fmt.Errorf("unexpected character %q at position %d", ch, p.pos)
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if unicode.IsDigit(rune(ch)) || ch == '.' || ch == 'e' || ch == 'E' ||
			((ch == '+' || ch == '-') && p.pos > start && (p.input[p.pos-1] == 'e' || p.input[p.pos-1] == 'E')) {
			p.pos++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return v, nil
}

func (p *exprParser) parseIdent() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && (unicode.IsLetter(rune(p.input[p.pos])) || unicode.IsDigit(rune(p.input[p.pos]))) {
		p.pos++
	}
	name := strings.ToLower(p.input[start:p.pos])

	if v, ok := calcConstants[name]; ok {
		return v, nil
	}

	p.skipSpace()
	if !p.consume("(") {
		return 0, fmt.Errorf("unknown variable %q", name)
	}

	var args []float64
	p.skipSpace()
	if !p.consume(")") {
		for {
			v, err := p.parseExpr()
			if err != nil {
				return 0, err
			}
			args = append(args, v)
			p.skipSpace()
			if p.consume(",") {
				continue
			}
			if p.consume(")") {
				break
			}
			return 0, fmt.Errorf("missing closing parenthesis in call to %q", name)
		}
	}
	return applyFunction(name, args)
}

func applyFunction(name string, args []float64) (float64, error) {
	unary := func(f func(float64) float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		return f(args[0]), nil
	}

	switch name {
	case "abs":
		return unary(math.Abs)
	case "round":
		return unary(math.Round)
	case "sqrt":
		if len(args) == 1 && args[0] < 0 {
			return 0, fmt.Errorf("sqrt of negative number")
		}
		return unary(math.Sqrt)
	case "log":
		if len(args) == 1 && args[0] <= 0 {
			return 0, fmt.Errorf("log of non-positive number")
		}
		return unary(math.Log)
	case "log10":
		if len(args) == 1 && args[0] <= 0 {
			return 0, fmt.Errorf("log10 of non-positive number")
		}
		return unary(math.Log10)
	case "sin":
		return unary(math.Sin)
	case "cos":
		return unary(math.Cos)
	case "tan":
		return unary(math.Tan)
	case "min", "max":
		if len(args) == 0 {
			return 0, fmt.Errorf("%s expects at least 1 argument", name)
		}
		v := args[0]
		for _, a := range args[1:] {
			if (name == "min" && a < v) || (name == "max" && a > v) {
				v = a
			}
		}
		return v, nil
	default:
		return 0, fmt.Errorf("unknown function %q", name)
	}
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

// consume advances past tok if the input continues with it. Multi-byte
// tokens ("//") must be consumed before their single-byte prefixes.
func (p *exprParser) consume(tok string) bool {
	if strings.HasPrefix(p.input[p.pos:], tok) {
		// Don't let "/" swallow the first half of "//".
		if tok == "/" && strings.HasPrefix(p.input[p.pos:], "//") {
			return false
		}
		p.pos += len(tok)
		return true
	}
	return false
}
