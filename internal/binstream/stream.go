// Package binstream implements the typed binary file format shared by the
// image-data cache, the result store and the mistake store: a magic, a
// version, and a little-endian payload. No example in the retrieved pack
// models this exact legacy wire format (fixed magic bytes, UTF-16 strings,
// a trailing subfolders flag on paths), so it is built directly on
// encoding/binary and unicode/utf16 rather than bent out of a
// general-purpose serialization library.
package binstream

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf16"

	"github.com/dupimg/dupimg/pkg/api"
)

// Writer serializes primitives in the engine's on-disk order: fixed-width
// little-endian integers, IEEE-754 doubles, u64-length-prefixed UTF-16
// strings, and paths as a string plus a subfolders flag.
type Writer struct {
	w   *bufio.Writer
	err error
}

// NewWriter wraps w and writes the magic and format version immediately.
func NewWriter(w io.Writer, magic string) (*Writer, error) {
	bw := &Writer{w: bufio.NewWriter(w)}
	bw.writeMagic(magic)
	bw.WriteUint32(api.StreamFormatVersion)
	if bw.err != nil {
		return nil, bw.err
	}
	return bw, nil
}

func (w *Writer) writeMagic(magic string) {
	buf := make([]byte, 4)
	copy(buf, magic)
	w.writeRaw(buf)
}

func (w *Writer) writeRaw(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

func (w *Writer) WriteUint8(v uint8) {
	w.writeRaw([]byte{v})
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

func (w *Writer) WriteUint32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.writeRaw(buf[:])
}

func (w *Writer) WriteInt16(v int16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(v))
	w.writeRaw(buf[:])
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteUint64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.writeRaw(buf[:])
}

func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteString writes a {u64 length, UTF-16 code units} pair.
func (w *Writer) WriteString(s string) {
	units := utf16.Encode([]rune(s))
	w.WriteUint64(uint64(len(units)))
	for _, u := range units {
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], u)
		w.writeRaw(buf[:])
	}
}

// WritePath writes a path string followed by a subfolders boolean flag.
func (w *Writer) WritePath(path string, subfolders bool) {
	w.WriteString(path)
	w.WriteBool(subfolders)
}

// Err returns the first error encountered, if any.
func (w *Writer) Err() error { return w.err }

// Flush flushes buffered output and returns any pending error.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}

// Reader deserializes the same primitives a Writer produces, and validates
// magic/version on construction.
type Reader struct {
	r   *bufio.Reader
	err error
}

// NewReader wraps r, verifies the magic, and reads the format version.
func NewReader(r io.Reader, wantMagic string) (*Reader, error) {
	br := &Reader{r: bufio.NewReader(r)}
	got := br.readRaw(4)
	if br.err != nil {
		return nil, api.WrapError(api.ErrCannotRead, "reading magic", br.err)
	}
	wantBuf := make([]byte, 4)
	copy(wantBuf, wantMagic)
	for i := range wantBuf {
		if got[i] != wantBuf[i] {
			return nil, api.NewError(api.ErrInvalidFileFormat, fmt.Sprintf("bad magic: got %q want %q", got, wantBuf))
		}
	}
	version := br.ReadUint32()
	if br.err != nil {
		return nil, api.WrapError(api.ErrCannotRead, "reading version", br.err)
	}
	if version != api.StreamFormatVersion {
		return nil, api.NewError(api.ErrInvalidVersion, fmt.Sprintf("unsupported version %d", version))
	}
	return br, nil
}

func (r *Reader) readRaw(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	_, r.err = io.ReadFull(r.r, buf)
	return buf
}

func (r *Reader) ReadUint8() uint8 {
	b := r.readRaw(1)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func (r *Reader) ReadBool() bool { return r.ReadUint8() != 0 }

func (r *Reader) ReadUint32() uint32 {
	b := r.readRaw(4)
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) ReadInt16() int16 {
	b := r.readRaw(2)
	if len(b) < 2 {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(b))
}

func (r *Reader) ReadInt32() int32 { return int32(r.ReadUint32()) }

func (r *Reader) ReadUint64() uint64 {
	b := r.readRaw(8)
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) ReadInt64() int64 { return int64(r.ReadUint64()) }

func (r *Reader) ReadFloat64() float64 { return math.Float64frombits(r.ReadUint64()) }

// ReadString reads a {u64 length, UTF-16 code units} pair. A length beyond
// SizeCheckLimit is rejected as format corruption rather than attempting a
// huge allocation.
func (r *Reader) ReadString() string {
	n := r.ReadUint64()
	if r.err != nil {
		return ""
	}
	if n > api.SizeCheckLimit {
		r.err = api.NewError(api.ErrInvalidFileFormat, "string length exceeds size check limit")
		return ""
	}
	units := make([]uint16, n)
	for i := range units {
		b := r.readRaw(2)
		if len(b) < 2 {
			return ""
		}
		units[i] = binary.LittleEndian.Uint16(b)
	}
	return string(utf16.Decode(units))
}

// ReadPath reads a path string followed by its subfolders flag.
func (r *Reader) ReadPath() (path string, subfolders bool) {
	path = r.ReadString()
	subfolders = r.ReadBool()
	return
}

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }
