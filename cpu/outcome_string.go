// Code generated by "stringer -linecomment -type=Outcome"; DO NOT EDIT.

package cpu

import "strconv"

func _() {
	// An "invalid array index" compiler error signifies that the constant values have changed.
	// Re-run the stringer command to generate them again.
	var x [1]struct{}
	_ = x[OUTCOME_CONTINUE-0]
	_ = x[OUTCOME_JUMP-1]
	_ = x[OUTCOME_HALT-2]
	_ = x[OUTCOME_FAULT-3]
}

const _Outcome_name = "continuejumphaltfault"

var _Outcome_index = [...]uint8{0, 8, 12, 16, 21}

func (i Outcome) String() string {
	if i < 0 || i >= Outcome(len(_Outcome_index)-1) {
		return "Outcome(" + strconv.FormatInt(int64(i), 10) + ")"
	}
	return _Outcome_name[_Outcome_index[i]:_Outcome_index[i+1]]
}
