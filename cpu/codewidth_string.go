// Code generated by "stringer -linecomment -type=CodeWidth"; DO NOT EDIT.

package cpu

import "strconv"

func _() {
	// An "invalid array index" compiler error signifies that the constant values have changed.
	// Re-run the stringer command to generate them again.
	var x [1]struct{}
	_ = x[WIDTH_BYTE-0]
	_ = x[WIDTH_WORD-1]
	_ = x[WIDTH_DWORD-2]
}

const _CodeWidth_name = "bwd"

var _CodeWidth_index = [...]uint8{0, 1, 2, 3}

func (i CodeWidth) String() string {
	if i < 0 || i >= CodeWidth(len(_CodeWidth_index)-1) {
		return "CodeWidth(" + strconv.FormatInt(int64(i), 10) + ")"
	}
	return _CodeWidth_name[_CodeWidth_index[i]:_CodeWidth_index[i+1]]
}
