package regex

// Opcodes are multiples of four; the low two bits carry repetition flags
// that may be OR'd onto an atom (literal, any, class or back-reference).
const (
	opEnd      byte = 0
	opChar     byte = 4  // operand: byte
	opAny      byte = 8  // any byte except newline
	opClass    byte = 12 // operand: 16-byte bitmap over 0x00-0x7f
	opClassExt byte = 16 // operand: 32-byte bitmap over 0x00-0xff
	opNClass   byte = 20 // operand: 16-byte bitmap, negated, never matches newline
	opBackref  byte = 24 // operand: group number
	opBOL      byte = 28
	opEOL      byte = 32
	opOpen     byte = 36 // operand: group number
	opClose    byte = 40 // operand: group number

	flagStar  byte = 1 // zero or more
	flagRange byte = 2 // followed by min and max count bytes

	opMask byte = ^byte(3)
)

// Unbounded is the max count stored for an open-ended repetition.
const Unbounded = 255

// MaxCount is the largest explicit bound accepted in {m,n}.
const MaxCount = 254

// MaxGroups is the number of numbered capture groups a program may hold.
const MaxGroups = 9

// DefaultMaxSize is the default compiled program size limit in bytes.
const DefaultMaxSize = 256

// Newline is the line-boundary byte.
const Newline = '\n'

// operandLen returns the operand size for an opcode without its flags.
func operandLen(op byte) int {
	switch op {
	case opChar, opBackref, opOpen, opClose:
		return 1
	case opClass, opNClass:
		return 16
	case opClassExt:
		return 32
	default:
		return 0
	}
}

// isAtom reports whether op may carry a repetition flag.
func isAtom(op byte) bool {
	switch op {
	case opChar, opAny, opClass, opClassExt, opNClass, opBackref:
		return true
	}
	return false
}

// Program is a compiled pattern. It is immutable after compilation.
type Program struct {
	code        []byte
	source      string
	anchored    bool
	endAnchored bool
	fold        bool
	firstGroup  int
	groups      int
	firstByte   int
	alt         *Program
}

// Source returns the pattern text the program was compiled from.
func (p *Program) Source() string { return p.source }

// Size returns the compiled program size in bytes.
func (p *Program) Size() int { return len(p.code) }

// Anchored reports whether the program only matches at offset zero.
func (p *Program) Anchored() bool { return p.anchored }

// EndAnchored reports whether the program only matches at end of line.
func (p *Program) EndAnchored() bool { return p.endAnchored }

// FoldCase reports whether the program compares letters case-insensitively.
func (p *Program) FoldCase() bool { return p.fold }

// Groups returns the group numbers defined by the program as a half-open
// range [first, last).
func (p *Program) Groups() (first, last int) {
	return p.firstGroup, p.firstGroup + p.groups
}

// Alternate returns the program with every bracket class that can match the
// line boundary replaced by an end anchor, or nil if there is none.
func (p *Program) Alternate() *Program { return p.alt }

func lower(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}

func upper(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

func bitSet(bm []byte, b byte) bool {
	return bm[b>>3]&(1<<(b&7)) != 0
}
