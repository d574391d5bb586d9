// Package wire implements the length-prefixed, versioned binary envelope
// shared by the result cache's status aggregate and the job engine's
// worker IPC protocol.
package wire

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"hash/crc32"
	"io"
)

// magic identifies a monitor wire frame; version allows the on-disk/
// on-wire format to evolve without breaking old readers outright.
var magic = [4]byte{'m', 'o', 'n', '1'}

const formatVersion = 1

const maxFrameLen = 256 << 20 // 256MiB guards against a corrupt length prefix

// ErrBadMagic is returned when a frame does not start with the expected
// magic bytes.
var ErrBadMagic = fmt.Errorf("wire: bad magic")

// ErrUnsupportedVersion is returned when a frame declares a format version
// this build does not understand.
var ErrUnsupportedVersion = fmt.Errorf("wire: unsupported format version")

// ErrChecksum is returned when a frame's trailing CRC-32 does not match
// its payload. The caller should treat the frame (and anything after it
// in the same stream) as torn.
var ErrChecksum = fmt.Errorf("wire: checksum mismatch")

// ErrFrameTooLarge is returned when a length prefix exceeds maxFrameLen.
var ErrFrameTooLarge = fmt.Errorf("wire: frame exceeds maximum size")

// WriteFrame gob-encodes v and writes it as one self-describing frame:
// magic, version, uint32 length, gob payload, uint32 CRC-32 of the payload.
func WriteFrame(w io.Writer, v any) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(v); err != nil {
		return fmt.Errorf("wire: encode: %w", err)
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic[:]); err != nil {
		return err
	}
	if err := bw.WriteByte(formatVersion); err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(payload.Len()))
	if _, err := bw.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := bw.Write(payload.Bytes()); err != nil {
		return err
	}
	var sumBuf [4]byte
	binary.BigEndian.PutUint32(sumBuf[:], crc32.ChecksumIEEE(payload.Bytes()))
	if _, err := bw.Write(sumBuf[:]); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadFrame reads one frame written by WriteFrame and gob-decodes its
// payload into v (a pointer). It returns ErrBadMagic/ErrUnsupportedVersion/
// ErrChecksum/ErrFrameTooLarge for a torn or foreign frame; callers treat
// any of these as "cache absent, full rescan" per the cache's consistency
// rules.
func ReadFrame(r io.Reader, v any) error {
	var hdr [5]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}
	if !bytes.Equal(hdr[:4], magic[:]) {
		return ErrBadMagic
	}
	if hdr[4] != formatVersion {
		return ErrUnsupportedVersion
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxFrameLen {
		return ErrFrameTooLarge
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return err
	}

	var sumBuf [4]byte
	if _, err := io.ReadFull(r, sumBuf[:]); err != nil {
		return err
	}
	want := binary.BigEndian.Uint32(sumBuf[:])
	if got := crc32.ChecksumIEEE(payload); got != want {
		return ErrChecksum
	}

	return gob.NewDecoder(bytes.NewReader(payload)).Decode(v)
}
