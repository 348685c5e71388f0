package value

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
)

// Wire helpers shared by the store codec and artifact implementations.
// Integers travel as two's-complement big-endian bytes behind a 4-byte
// big-endian length, so the encoding is self-delimiting inside composite
// payloads.

// WriteUint32 writes a 4-byte big-endian unsigned length.
func WriteUint32(w io.Writer, n uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], n)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint32 reads a 4-byte big-endian unsigned length.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

// WriteBig writes n as length-prefixed two's-complement big-endian bytes.
func WriteBig(w io.Writer, n *big.Int) error {
	b := twosComplement(n)
	if err := WriteUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// maxIntPayload bounds an encoded integer at one mebibyte; a corrupt length
// prefix must not drive a giant allocation.
const maxIntPayload = 1 << 20

// ReadBig reads an integer written by WriteBig.
func ReadBig(r io.Reader) (*big.Int, error) {
	n, err := ReadUint32(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("integer payload has zero length")
	}
	if n > maxIntPayload {
		return nil, fmt.Errorf("integer payload length %d exceeds limit %d", n, maxIntPayload)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	out := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(8*len(b)))
		out.Sub(out, mod)
	}
	return out, nil
}

// twosComplement renders n in the minimal number of whole bytes that
// preserves its sign bit.
func twosComplement(n *big.Int) []byte {
	if n.Sign() >= 0 {
		b := n.Bytes()
		if len(b) == 0 {
			return []byte{0}
		}
		if b[0]&0x80 != 0 {
			return append([]byte{0}, b...)
		}
		return b
	}
	width := len(n.Bytes())
	if width == 0 {
		width = 1
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(8*width-1))
	if n.CmpAbs(limit) > 0 {
		width++
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(8*width))
	tc := new(big.Int).Add(mod, n)
	b := tc.Bytes()
	if len(b) < width {
		padded := make([]byte, width)
		copy(padded[width-len(b):], b)
		return padded
	}
	return b
}
