// Code generated by "stringer -linecomment -type=Register"; DO NOT EDIT.

package cpu

import "strconv"

func _() {
	// An "invalid array index" compiler error signifies that the constant values have changed.
	// Re-run the stringer command to generate them again.
	var x [1]struct{}
	_ = x[REG_A-0]
	_ = x[REG_B-1]
	_ = x[REG_C-2]
	_ = x[REG_D-3]
	_ = x[REG_E-4]
	_ = x[REG_F-5]
	_ = x[REG_SP-6]
	_ = x[REG_BP-7]
	_ = x[REG_IP-8]
}

const _Register_name = "abcdefspbpip"

var _Register_index = [...]uint8{0, 1, 2, 3, 4, 5, 6, 8, 10, 12}

func (i Register) String() string {
	if i < 0 || i >= Register(len(_Register_index)-1) {
		return "Register(" + strconv.FormatInt(int64(i), 10) + ")"
	}
	return _Register_name[_Register_index[i]:_Register_index[i+1]]
}
