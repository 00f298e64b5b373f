// Package rom holds r9 program images, and moves them to and from file systems.
package rom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"maps"
	"path"
	"strings"
)

// Rom is a raw memory image, loaded at address 0.
type Rom struct {
	Data []byte
}

var _ io.ReaderFrom = (*Rom)(nil)
var _ io.WriterTo = (*Rom)(nil)

// Defines returns the image equates.
func (rom *Rom) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"ROM_SIZE": fmt.Sprintf("%v", len(rom.Data)),
	})
}

// ReadFrom replaces the image with the contents of the reader.
func (rom *Rom) ReadFrom(r io.Reader) (n int64, err error) {
	buf := &bytes.Buffer{}
	n, err = buf.ReadFrom(r)
	if err != nil {
		return
	}

	rom.Data = buf.Bytes()
	return
}

// WriteTo writes the image to the writer.
func (rom *Rom) WriteTo(w io.Writer) (n int64, err error) {
	nw, err := w.Write(rom.Data)
	n = int64(nw)

	return
}

// Open loads the image from a file system. An empty file is an error.
func (rom *Rom) Open(filesys fs.FS, name string) (err error) {
	defer func() {
		if err != nil {
			err = &ErrRom{Name: name, Err: err}
		}
	}()

	inf, err := filesys.Open(name)
	if err != nil {
		return
	}
	defer inf.Close()

	_, err = rom.ReadFrom(inf)
	if err != nil {
		return
	}

	if len(rom.Data) == 0 {
		err = ErrRomEmpty
		return
	}

	return
}

// Save writes the image to a file system, creating any missing directories
// along the way.
func (rom *Rom) Save(filesys CreateFS, name string) (err error) {
	defer func() {
		if err != nil {
			err = &ErrRom{Name: name, Err: err}
		}
	}()

	dir, file := path.Split(name)
	for _, part := range strings.Split(strings.Trim(dir, "/"), "/") {
		if len(part) == 0 {
			continue
		}
		var subsys CreateFS
		subsys, err = filesys.Sub(part)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return
			}
			// Create the directory
			err = filesys.Mkdir(part, 0755)
			if err != nil {
				return
			}
			subsys, err = filesys.Sub(part)
			if err != nil {
				return
			}
		}
		filesys = subsys
	}

	ouf, err := filesys.Create(file)
	if err != nil {
		return
	}

	_, err = rom.WriteTo(ouf)
	if err != nil {
		ouf.Close()
		return
	}

	err = ouf.Close()
	return
}
