package cpu

// Register is an index into the register file.
type Register int

// Register c holds logic results and is the jump flag; e and f hold the
// MUL product and the DIV remainder and quotient.
//
//go:generate go tool stringer -linecomment -type=Register
const (
	REG_A  = Register(0) // a
	REG_B  = Register(1) // b
	REG_C  = Register(2) // c
	REG_D  = Register(3) // d
	REG_E  = Register(4) // e
	REG_F  = Register(5) // f
	REG_SP = Register(6) // sp
	REG_BP = Register(7) // bp
	REG_IP = Register(8) // ip
)

const REGISTER_COUNT = 9

// Valid returns true if the register index is in the register file.
func (reg Register) Valid() bool {
	return reg >= 0 && reg < REGISTER_COUNT
}

// ParseRegister returns the register for a register name.
func ParseRegister(name string) (reg Register, ok bool) {
	for n := range REGISTER_COUNT {
		if Register(n).String() == name {
			return Register(n), true
		}
	}

	return
}

// RegisterFile holds the nine 32-bit registers.
type RegisterFile [REGISTER_COUNT]uint32

// Get returns the register value.
func (rf *RegisterFile) Get(reg Register) (value uint32, err error) {
	if !reg.Valid() {
		err = ErrIndexFault
		return
	}

	value = rf[reg]
	return
}

// GetSigned returns the register value as two's complement.
func (rf *RegisterFile) GetSigned(reg Register) (value int32, err error) {
	u, err := rf.Get(reg)
	value = int32(u)
	return
}

// Set stores the register value.
func (rf *RegisterFile) Set(reg Register, value uint32) (err error) {
	if !reg.Valid() {
		err = ErrIndexFault
		return
	}

	rf[reg] = value
	return
}

// Reset zeroes all registers.
func (rf *RegisterFile) Reset() {
	clear(rf[:])
}
