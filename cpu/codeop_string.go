// Code generated by "stringer -linecomment -type=CodeOp"; DO NOT EDIT.

package cpu

import "strconv"

func _() {
	// An "invalid array index" compiler error signifies that the constant values have changed.
	// Re-run the stringer command to generate them again.
	var x [1]struct{}
	_ = x[OP_NOP-0]
	_ = x[OP_LOAD-1]
	_ = x[OP_STORE-2]
	_ = x[OP_ADD-3]
	_ = x[OP_SUB-4]
	_ = x[OP_MUL-5]
	_ = x[OP_DIV-6]
	_ = x[OP_OR-7]
	_ = x[OP_AND-8]
	_ = x[OP_XOR-9]
	_ = x[OP_NOT-10]
	_ = x[OP_SHR-11]
	_ = x[OP_SHL-12]
	_ = x[OP_STACK-13]
	_ = x[OP_JUMP-14]
	_ = x[OP_HALT-15]
}

const _CodeOp_name = "noploadstoreaddsubmuldivorandxornotshrshlstackjumphalt"

var _CodeOp_index = [...]uint8{0, 3, 7, 12, 15, 18, 21, 24, 26, 29, 32, 35, 38, 41, 46, 50, 54}

func (i CodeOp) String() string {
	if i < 0 || i >= CodeOp(len(_CodeOp_index)-1) {
		return "CodeOp(" + strconv.FormatInt(int64(i), 10) + ")"
	}
	return _CodeOp_name[_CodeOp_index[i]:_CodeOp_index[i+1]]
}
