package rom

import (
	"errors"

	"github.com/ezrec/r9/translate"
)

var f = translate.From

var (
	ErrRomEmpty = errors.New(f("rom empty"))
)

// ErrRom locates an image file error.
type ErrRom struct {
	Name string
	Err  error
}

func (err *ErrRom) Error() string {
	return f("rom %v: %v", err.Name, err.Err)
}

func (err *ErrRom) Unwrap() error {
	return err.Err
}
