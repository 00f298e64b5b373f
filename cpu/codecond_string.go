// Code generated by "stringer -linecomment -type=CodeCond"; DO NOT EDIT.

package cpu

import "strconv"

func _() {
	// An "invalid array index" compiler error signifies that the constant values have changed.
	// Re-run the stringer command to generate them again.
	var x [1]struct{}
	_ = x[COND_ZERO-0]
	_ = x[COND_POSITIVE-1]
	_ = x[COND_NEGATIVE-2]
	_ = x[COND_ALWAYS-3]
}

const _CodeCond_name = "jzjpljmijump"

var _CodeCond_index = [...]uint8{0, 2, 5, 8, 12}

func (i CodeCond) String() string {
	if i < 0 || i >= CodeCond(len(_CodeCond_index)-1) {
		return "CodeCond(" + strconv.FormatInt(int64(i), 10) + ")"
	}
	return _CodeCond_name[_CodeCond_index[i]:_CodeCond_index[i+1]]
}
