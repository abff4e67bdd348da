package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/akhildatla/umlab/pkg/um"
)

// OperandType represents the type of an operand.
type OperandType uint8

const (
	OperandRegister OperandType = iota
	OperandInt
)

// Operand represents an instruction operand.
type Operand struct {
	Type   OperandType
	RegNum um.Register // For registers
	IntVal uint64      // For integer and character literals
}

// AsmInstruction represents a parsed assembly line. A .rept block is an
// AsmInstruction with Opcode ".rept", the repeat count in Count and the
// repeated lines in Body.
type AsmInstruction struct {
	Opcode   string
	Operands []Operand
	Line     int
	Count    uint64
	Body     []AsmInstruction
}

// AsmProgram represents a parsed assembly program.
type AsmProgram struct {
	Instructions []AsmInstruction
}

// Parser parses UM assembly source code.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	lexer := NewLexer(input)
	return &Parser{
		tokens: lexer.Tokenize(),
		pos:    0,
	}
}

// Parse parses the entire input and returns the program.
func (p *Parser) Parse() (*AsmProgram, error) {
	body, err := p.parseBlock(0)
	if err != nil {
		return nil, err
	}
	return &AsmProgram{Instructions: body}, nil
}

// parseBlock parses lines until EOF, or until .endr when opened is the line
// of an enclosing .rept.
func (p *Parser) parseBlock(opened int) ([]AsmInstruction, error) {
	body := []AsmInstruction{}

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		switch tok.Type {
		case TokenEOF:
			if opened != 0 {
				return nil, fmt.Errorf("line %d: .rept without .endr", opened)
			}
			return body, nil

		case TokenNewline:
			p.pos++

		case TokenIdent:
			inst, err := p.parseInstruction()
			if err != nil {
				return nil, err
			}
			body = append(body, inst)

		case TokenDirective:
			switch strings.ToLower(tok.Value) {
			case ".rept":
				block, err := p.parseRepeat()
				if err != nil {
					return nil, err
				}
				body = append(body, block)
			case ".endr":
				if opened == 0 {
					return nil, fmt.Errorf("line %d: .endr without .rept", tok.Line)
				}
				p.pos++
				if err := p.expectEndOfLine(); err != nil {
					return nil, err
				}
				return body, nil
			default:
				return nil, fmt.Errorf("line %d: unknown directive: %s", tok.Line, tok.Value)
			}

		default:
			return nil, fmt.Errorf("line %d: unexpected token: %q", tok.Line, tok.Value)
		}
	}

	return body, nil
}

func (p *Parser) parseRepeat() (AsmInstruction, error) {
	start := p.tokens[p.pos]
	p.pos++ // Consume .rept

	tok := p.tokens[p.pos]
	if tok.Type != TokenInt {
		return AsmInstruction{}, fmt.Errorf("line %d: .rept needs a count", start.Line)
	}
	count, err := parseInt(tok)
	if err != nil {
		return AsmInstruction{}, err
	}
	p.pos++
	if err := p.expectEndOfLine(); err != nil {
		return AsmInstruction{}, err
	}

	body, err := p.parseBlock(start.Line)
	if err != nil {
		return AsmInstruction{}, err
	}

	return AsmInstruction{
		Opcode: ".rept",
		Line:   start.Line,
		Count:  count,
		Body:   body,
	}, nil
}

func (p *Parser) expectEndOfLine() error {
	tok := p.tokens[p.pos]
	if tok.Type != TokenNewline && tok.Type != TokenEOF {
		return fmt.Errorf("line %d: unexpected token: %q", tok.Line, tok.Value)
	}
	return nil
}

func (p *Parser) parseInstruction() (AsmInstruction, error) {
	inst := AsmInstruction{
		Opcode:   p.tokens[p.pos].Value,
		Line:     p.tokens[p.pos].Line,
		Operands: []Operand{},
	}
	p.pos++ // Consume opcode

	// Operands are separated by commas and end at newline or EOF
	expectOperand := true
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		if tok.Type == TokenNewline || tok.Type == TokenEOF {
			break
		}

		if tok.Type == TokenComma {
			if expectOperand {
				return inst, fmt.Errorf("line %d: unexpected comma", tok.Line)
			}
			expectOperand = true
			p.pos++
			continue
		}

		if !expectOperand {
			return inst, fmt.Errorf("line %d: missing comma before %q", tok.Line, tok.Value)
		}

		operand, err := p.parseOperand()
		if err != nil {
			return inst, err
		}
		inst.Operands = append(inst.Operands, operand)
		expectOperand = false
	}

	if expectOperand && len(inst.Operands) > 0 {
		return inst, fmt.Errorf("line %d: trailing comma", inst.Line)
	}

	return inst, nil
}

func (p *Parser) parseOperand() (Operand, error) {
	tok := p.tokens[p.pos]

	switch tok.Type {
	case TokenRegister:
		reg, err := um.ParseRegister(tok.Value)
		if err != nil {
			return Operand{}, fmt.Errorf("line %d: %w", tok.Line, err)
		}
		p.pos++
		return Operand{Type: OperandRegister, RegNum: reg}, nil

	case TokenInt:
		v, err := parseInt(tok)
		if err != nil {
			return Operand{}, err
		}
		p.pos++
		return Operand{Type: OperandInt, IntVal: v}, nil

	case TokenChar:
		p.pos++
		return Operand{Type: OperandInt, IntVal: uint64(tok.Value[0])}, nil

	default:
		return Operand{}, fmt.Errorf("line %d: unexpected token: %q", tok.Line, tok.Value)
	}
}

func parseInt(tok Token) (uint64, error) {
	v, err := strconv.ParseUint(tok.Value, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid integer: %s", tok.Line, tok.Value)
	}
	return v, nil
}
