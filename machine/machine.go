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

// Package machine implements the 16-bit accumulator target machine ("pmc")
// that compiled duh programs run on: a flat 512-word memory, a single
// accumulator, four addressing modes, and sixteen opcodes encoded into one
// machine word each.
package machine

import "github.com/pkg/errors"

// Word is a single machine word: an opcode, an addressing mode, and a
// 9-bit signed-magnitude address, packed as sign(1)|opcode(4)|mode(2)|addr(9).
type Word int16

// MemorySize is the number of addressable words of memory.
const MemorySize = 512

const (
	addrBits   = 9
	addrMask   = 1<<addrBits - 1
	modeBits   = 2
	modeMask   = 1<<modeBits - 1
	opcodeBits = 4
	opcodeMask = 1<<opcodeBits - 1
)

// Opcode is one of the sixteen machine instructions. The ordering is part
// of the wire format: it determines the 4-bit encoding of each opcode.
type Opcode int

const (
	NULL Opcode = iota
	STOP
	LOAD
	STORE
	JUMP
	JNEG
	JZERO
	PRINT
	ADD
	SUB
	SHL
	SHR
	AND
	OR
	NOT
	XOR
)

var opcodeText = [...]string{
	NULL: "NULL", STOP: "STOP", LOAD: "LOAD", STORE: "STORE",
	JUMP: "JUMP", JNEG: "JNEG", JZERO: "JZERO", PRINT: "PRINT",
	ADD: "ADD", SUB: "SUB", SHL: "SHL", SHR: "SHR",
	AND: "AND", OR: "OR", NOT: "NOT", XOR: "XOR",
}

func (o Opcode) String() string { return opcodeText[o] }

// AddrMode selects how an instruction's address field is interpreted.
type AddrMode int

const (
	IMMEDIATE AddrMode = iota
	DIRECT
	INDIRECT
	RELATIVE
)

var modeText = [...]string{
	IMMEDIATE: ".", DIRECT: "@", INDIRECT: "*", RELATIVE: "+",
}

func (m AddrMode) String() string { return modeText[m] }

// ErrAddressOutOfRange is returned by Encode when addr does not fit in the
// 9-bit signed-magnitude address field.
var ErrAddressOutOfRange = errors.New("address out of range")

// Encode packs an opcode, addressing mode, and signed address into a Word.
// It fails closed: an address whose magnitude does not fit in 9 bits is
// reported as an error rather than silently truncated.
func Encode(op Opcode, mode AddrMode, addr int) (Word, error) {
	sign := 0
	mag := addr
	if mag < 0 {
		sign = 1
		mag = -mag
	}
	if mag > addrMask {
		return 0, errors.Wrapf(ErrAddressOutOfRange, "address %d", addr)
	}
	w := sign<<(opcodeBits+modeBits+addrBits) |
		int(op)<<(modeBits+addrBits) |
		int(mode)<<addrBits |
		mag
	return Word(w), nil
}

// Decode unpacks a Word into its opcode, addressing mode, and signed
// address.
func Decode(w Word) (op Opcode, mode AddrMode, addr int) {
	u := uint16(w)
	sign := (u >> (opcodeBits + modeBits + addrBits)) & 1
	op = Opcode((u >> (modeBits + addrBits)) & opcodeMask)
	mode = AddrMode((u >> addrBits) & modeMask)
	addr = int(u & addrMask)
	if sign == 1 {
		addr = -addr
	}
	return op, mode, addr
}

// Output receives the values printed by a running program, one per PRINT
// instruction executed.
type Output interface {
	Emit(v int)
}

// Instance is a single target machine: its memory, registers, and the
// output sink PRINT writes to. The zero value is not usable; construct
// with New.
type Instance struct {
	Memory [MemorySize]Word

	AC      int // accumulator
	IC      int // instruction counter (program counter)
	IR      Word
	operand int
	running bool

	output Output
}

// Option configures an Instance at construction time.
type Option func(*Instance) error

// WithOutput directs PRINT output to out instead of the default no-op
// sink.
func WithOutput(out Output) Option {
	return func(i *Instance) error {
		i.output = out
		return nil
	}
}

type discardOutput struct{}

func (discardOutput) Emit(int) {}

// New constructs an Instance with the given initial memory image. Memory
// beyond len(image) is zeroed. Execution starts at address 0.
func New(image []Word, opts ...Option) (*Instance, error) {
	if len(image) > MemorySize {
		return nil, errors.Errorf("image of %d words exceeds memory size %d", len(image), MemorySize)
	}
	i := &Instance{output: discardOutput{}}
	copy(i.Memory[:], image)
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, errors.Wrap(err, "applying option")
		}
	}
	return i, nil
}

// inRange reports whether addr is a valid memory address.
func inRange(addr int) bool {
	return addr >= 0 && addr < MemorySize
}

// resolveOperand computes the effective operand value for the current
// instruction's addressing mode. It returns ok == false if resolution
// requires a memory access that falls outside the machine's address
// space, in which case the caller halts the machine silently.
func (i *Instance) resolveOperand(mode AddrMode, addr int) (value int, ok bool) {
	switch mode {
	case IMMEDIATE:
		return addr, true
	case DIRECT:
		if !inRange(addr) {
			return 0, false
		}
		return int(i.Memory[addr]), true
	case INDIRECT:
		if !inRange(addr) {
			return 0, false
		}
		ptr := int(i.Memory[addr])
		if !inRange(ptr) {
			return 0, false
		}
		return int(i.Memory[ptr]), true
	case RELATIVE:
		// Pure arithmetic, not a memory access: the operand is the
		// accumulator offset by addr, with no indexing into memory
		// and so no range check on the result.
		return i.AC + addr, true
	default:
		return 0, false
	}
}

// effectiveAddress computes the memory address that STORE writes through,
// for the given addressing mode. It returns ok == false on an
// out-of-range access.
func (i *Instance) effectiveAddress(mode AddrMode, addr int) (effective int, ok bool) {
	switch mode {
	case DIRECT:
		if !inRange(addr) {
			return 0, false
		}
		return addr, true
	case INDIRECT:
		if !inRange(addr) {
			return 0, false
		}
		ptr := int(i.Memory[addr])
		if !inRange(ptr) {
			return 0, false
		}
		return ptr, true
	case RELATIVE:
		// Unlike resolveOperand's RELATIVE case, the AC+addr result
		// here names a location STORE is about to write through, so
		// it still needs a range check.
		eff := i.AC + addr
		if !inRange(eff) {
			return 0, false
		}
		return eff, true
	default:
		// IMMEDIATE has no storage location; callers must not reach here.
		return 0, false
	}
}

// Run executes the loaded program from the current IC until STOP executes
// or a memory access falls outside the machine's address space, in which
// case the machine halts silently with no error. Run never panics.
func (i *Instance) Run() {
	i.running = true
	for i.running {
		if !inRange(i.IC) {
			i.running = false
			return
		}
		i.IR = i.Memory[i.IC]
		op, mode, addr := Decode(i.IR)
		i.IC++
		if !i.step(op, mode, addr) {
			i.running = false
			return
		}
	}
}

// step executes a single decoded instruction. It returns false if the
// machine must halt, either because the instruction is STOP or because an
// operand or store address fell out of range.
func (i *Instance) step(op Opcode, mode AddrMode, addr int) bool {
	switch op {
	case NULL:
		return true
	case STOP:
		return false
	case LOAD:
		v, ok := i.resolveOperand(mode, addr)
		if !ok {
			return false
		}
		i.AC = v
		return true
	case STORE:
		eff, ok := i.effectiveAddress(mode, addr)
		if !ok {
			return false
		}
		i.Memory[eff] = Word(i.AC)
		return true
	case JUMP:
		v, ok := i.resolveOperand(mode, addr)
		if !ok {
			return false
		}
		i.IC = v
		return true
	case JNEG:
		v, ok := i.resolveOperand(mode, addr)
		if !ok {
			return false
		}
		if i.AC < 0 {
			i.IC = v
		}
		return true
	case JZERO:
		v, ok := i.resolveOperand(mode, addr)
		if !ok {
			return false
		}
		if i.AC == 0 {
			i.IC = v
		}
		return true
	case PRINT:
		v, ok := i.resolveOperand(mode, addr)
		if !ok {
			return false
		}
		i.operand = v
		i.output.Emit(v)
		return true
	case ADD:
		v, ok := i.resolveOperand(mode, addr)
		if !ok {
			return false
		}
		i.AC += v
		return true
	case SUB:
		v, ok := i.resolveOperand(mode, addr)
		if !ok {
			return false
		}
		i.AC -= v
		return true
	case SHL:
		v, ok := i.resolveOperand(mode, addr)
		if !ok {
			return false
		}
		i.AC <<= uint(v)
		return true
	case SHR:
		v, ok := i.resolveOperand(mode, addr)
		if !ok {
			return false
		}
		i.AC >>= uint(v)
		return true
	case AND:
		v, ok := i.resolveOperand(mode, addr)
		if !ok {
			return false
		}
		i.AC &= v
		return true
	case OR:
		v, ok := i.resolveOperand(mode, addr)
		if !ok {
			return false
		}
		i.AC |= v
		return true
	case NOT:
		if _, ok := i.resolveOperand(mode, addr); !ok {
			return false
		}
		i.AC = ^i.AC
		return true
	case XOR:
		v, ok := i.resolveOperand(mode, addr)
		if !ok {
			return false
		}
		i.AC ^= v
		return true
	default:
		return false
	}
}

// Running reports whether the machine is mid-execution. It is false both
// before the first Run call and after Run returns.
func (i *Instance) Running() bool { return i.running }
