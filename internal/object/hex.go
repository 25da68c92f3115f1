// Package object implements an Intel-Hex-style encoding of MSP430 object
// code: byte-addressed records loaded directly into the memory controller's
// FRAM-code region. It is adapted from the teacher's internal/encoding
// package, which encodes the same record grammar for the LC-3's big-endian,
// word-addressed memory. MSP430 memory is byte-oriented and little-endian
// (spec.md §6), so here each record's data field is the raw byte sequence
// destined for consecutive addresses, with no word-pair reordering.
package object

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/msp430emu/emulator/internal/core"
)

const Grammar = `
file  = { line } ;
line  = ':' len addr type data check nl ;
len   = byte ;
addr  = byte byte ;
type  = byte ;
data  = { byte }
byte  = hex hex ;
hex   = '0' | '1' | '2' | '3' | '4' | '5' | '6' | '7' | '8' | '9'
      | 'a' | 'b' | 'c' | 'd' | 'e' | 'f' | 'A' | 'B' | 'C' | 'D' | 'E' | 'F' ;
nl    = '\n' ;
`

// Record is one contiguous span of object code: Data is loaded starting at
// Orig, one byte per address.
type Record struct {
	Orig core.Addr
	Data []byte
}

// HexEncoding marshals and unmarshals a firmware image as Intel-Hex text.
type HexEncoding struct {
	records []Record
}

// Records returns the decoded object code.
func (h HexEncoding) Records() []Record { return h.records }

// NewHexEncoding wraps records for marshaling.
func NewHexEncoding(records []Record) *HexEncoding {
	return &HexEncoding{records: records}
}

func (h *HexEncoding) MarshalText() ([]byte, error) {
	var (
		buf   bytes.Buffer
		check byte
	)

	enc := hex.NewEncoder(&buf)

	for _, rec := range h.records {
		check = 0

		buf.WriteByte(':')

		l := byte(len(rec.Data))
		check += l

		if _, err := enc.Write([]byte{l}); err != nil {
			return buf.Bytes(), err
		}

		addr := [2]byte{byte(rec.Orig >> 8), byte(rec.Orig & 0xff)}
		check += addr[0] + addr[1]

		if _, err := enc.Write(addr[:]); err != nil {
			return buf.Bytes(), err
		}

		buf.WriteString("00") // record type: data

		if _, err := enc.Write(rec.Data); err != nil {
			return buf.Bytes(), err
		}

		for _, b := range rec.Data {
			check += b
		}

		checksum := byte(1 + ^check)
		if _, err := enc.Write([]byte{checksum}); err != nil {
			return buf.Bytes(), err
		}

		buf.WriteByte('\n')
	}

	buf.WriteString(":00000001ff\n")

	return buf.Bytes(), nil
}

func (h *HexEncoding) UnmarshalText(bs []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(bs))

	for scanner.Scan() {
		rec := scanner.Bytes()

		if len(rec) == 0 {
			continue
		}

		if rec[0] != ':' {
			return fmt.Errorf("%w: line does not start with ':'", ErrDecode)
		}

		if len(rec) < 11 {
			return fmt.Errorf("%w: line too short", ErrDecode)
		}

		var (
			check    byte
			dec      [4]byte
			recLen   byte
			recAddr  uint16
			recKind  byte
			recCheck byte
		)

		if _, err := hex.Decode(dec[:1], rec[1:3]); err != nil {
			return fmt.Errorf("%w: len: %s", ErrDecode, err)
		}

		recLen = dec[0]
		check += dec[0]

		if _, err := hex.Decode(dec[:2], rec[3:7]); err != nil {
			return fmt.Errorf("%w: addr: %s", ErrDecode, err)
		}

		recAddr = binary.BigEndian.Uint16(dec[:2])
		check += dec[0] + dec[1]

		if _, err := hex.Decode(dec[:1], rec[7:9]); err != nil {
			return fmt.Errorf("%w: type: %s", ErrDecode, err)
		}

		recKind = dec[0]
		check += dec[0]

		if _, err := hex.Decode(dec[:1], rec[len(rec)-2:]); err != nil {
			return fmt.Errorf("%w: check: %s", ErrDecode, err)
		}

		recCheck = dec[0]

		switch recKind {
		case kindData:
			data := make([]byte, recLen)

			if recLen > 0 {
				if _, err := hex.Decode(data, rec[9:9+int(recLen)*2]); err != nil {
					return fmt.Errorf("%w: data: %s", ErrDecode, err)
				}
			}

			for _, b := range data {
				check += b
			}

			check = 1 + ^check
			if check != recCheck {
				return fmt.Errorf("%w: checksum invalid: %02x != %02x", ErrDecode, check, recCheck)
			}

			h.records = append(h.records, Record{Orig: core.Addr(recAddr), Data: data})

		case kindEOF:
			check = 1 + ^check
			if check != recCheck {
				return fmt.Errorf("%w: checksum invalid: %02x != %02x", ErrDecode, check, recCheck)
			}

			return h.finish()

		default:
			return fmt.Errorf("%w: unexpected record type: %d", ErrDecode, recKind)
		}
	}

	return h.finish()
}

func (h *HexEncoding) finish() error {
	if len(h.records) == 0 {
		return errEmpty
	}

	return nil
}

const (
	kindData byte = 0
	kindEOF  byte = 1
)

type decodingError struct{}

func (decodingError) Error() string { return "object: decoding error" }

func (de *decodingError) Is(err error) bool {
	if de == err {
		return true
	}

	_, ok := err.(*decodingError)

	return ok
}

var (
	// ErrDecode wraps every decoding failure from UnmarshalText.
	ErrDecode = &decodingError{}

	errEmpty = fmt.Errorf("%w: no records decoded", ErrDecode)
)

// LoadInto writes every record's bytes into mem starting at its origin,
// using the memory controller's ordinary WriteByte path so permissions, lock
// state, and the bit-clear rule apply as they would for a running program.
// After each byte written to a flash-owned address, LoadInto runs that
// program operation's busy time to completion so the next byte can be
// programmed.
func LoadInto(mem *core.MemoryController, records []Record) (int, error) {
	count := 0

	for _, rec := range records {
		addr := rec.Orig

		for _, b := range rec.Data {
			if _, err := mem.WriteByte(addr, b); err != nil {
				return count, fmt.Errorf("object: load at %s: %w", addr, err)
			}

			if flash := mem.Flash(); flash != nil && flash.Owns(addr) {
				flash.Update(flash.CyclesRemaining())
			}

			addr++
			count++
		}
	}

	return count, nil
}
