package store

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vk/invariant/internal/value"
)

// Envelope format, used by every serializing store tier:
//
//	[4-byte big-endian length L][L bytes UTF-8 type-name][payload]
//
// Reserved type-names identify the native variants; any other name resolves
// through the artifact type registry. Every payload is self-delimiting, so
// envelopes nest inside List and Map payloads without outer lengths.
//
// The digest of an artifact is computed before envelope wrapping; the
// envelope is purely transport.
const (
	typeNull    = "invariant.Null"
	typeBool    = "invariant.Bool"
	typeInt     = "invariant.Int"
	typeDecimal = "invariant.Decimal"
	typeStr     = "invariant.Str"
	typeList    = "invariant.List"
	typeMap     = "invariant.Map"
)

// EncodeValue serializes v as a single envelope.
func EncodeValue(w io.Writer, v value.Value) error {
	switch vv := v.(type) {
	case value.Null:
		return writeHeader(w, typeNull)
	case value.Bool:
		if err := writeHeader(w, typeBool); err != nil {
			return err
		}
		b := byte(0x00)
		if vv {
			b = 0x01
		}
		_, err := w.Write([]byte{b})
		return err
	case value.Int:
		if err := writeHeader(w, typeInt); err != nil {
			return err
		}
		return value.WriteBig(w, vv.Big())
	case value.Decimal:
		if err := writeHeader(w, typeDecimal); err != nil {
			return err
		}
		return writeBytes(w, []byte(vv.Canonical()))
	case value.Str:
		if err := writeHeader(w, typeStr); err != nil {
			return err
		}
		return writeBytes(w, []byte(vv))
	case value.List:
		if err := writeHeader(w, typeList); err != nil {
			return err
		}
		if err := value.WriteUint32(w, uint32(len(vv))); err != nil {
			return err
		}
		for _, e := range vv {
			if err := EncodeValue(w, e); err != nil {
				return err
			}
		}
		return nil
	case value.Map:
		if err := writeHeader(w, typeMap); err != nil {
			return err
		}
		if err := value.WriteUint32(w, uint32(len(vv))); err != nil {
			return err
		}
		for _, k := range vv.SortedKeys() {
			if err := EncodeValue(w, value.Str(k)); err != nil {
				return err
			}
			if err := EncodeValue(w, vv[k]); err != nil {
				return err
			}
		}
		return nil
	case value.Domain:
		if err := writeHeader(w, vv.A.TypeName()); err != nil {
			return err
		}
		return vv.A.EncodeTo(w)
	}
	return fmt.Errorf("cannot encode nil value")
}

// DecodeValue reads one envelope, resolving Domain type-names through types.
func DecodeValue(r io.Reader, types *value.TypeRegistry) (value.Value, error) {
	name, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	switch name {
	case typeNull:
		return value.Null{}, nil
	case typeBool:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, fmt.Errorf("truncated bool payload: %w", err)
		}
		return value.Bool(b[0] == 0x01), nil
	case typeInt:
		n, err := value.ReadBig(r)
		if err != nil {
			return nil, fmt.Errorf("bad int payload: %w", err)
		}
		return value.NewIntFromBig(n), nil
	case typeDecimal:
		b, err := readBytes(r)
		if err != nil {
			return nil, fmt.Errorf("bad decimal payload: %w", err)
		}
		d, err := value.ParseDecimal(string(b))
		if err != nil {
			return nil, fmt.Errorf("bad decimal payload: %w", err)
		}
		return d, nil
	case typeStr:
		b, err := readBytes(r)
		if err != nil {
			return nil, fmt.Errorf("bad str payload: %w", err)
		}
		return value.Str(b), nil
	case typeList:
		n, err := value.ReadUint32(r)
		if err != nil {
			return nil, fmt.Errorf("truncated list count: %w", err)
		}
		out := make(value.List, 0, n)
		for i := uint32(0); i < n; i++ {
			e, err := DecodeValue(r, types)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			out = append(out, e)
		}
		return out, nil
	case typeMap:
		n, err := value.ReadUint32(r)
		if err != nil {
			return nil, fmt.Errorf("truncated map count: %w", err)
		}
		out := make(value.Map, n)
		for i := uint32(0); i < n; i++ {
			k, err := DecodeValue(r, types)
			if err != nil {
				return nil, fmt.Errorf("map entry %d key: %w", i, err)
			}
			key, ok := k.(value.Str)
			if !ok {
				return nil, fmt.Errorf("map entry %d has %s key", i, k.Kind())
			}
			v, err := DecodeValue(r, types)
			if err != nil {
				return nil, fmt.Errorf("map key %q: %w", string(key), err)
			}
			out[string(key)] = v
		}
		return out, nil
	}
	if types == nil {
		return nil, fmt.Errorf("artifact type %q cannot be resolved without a type registry", name)
	}
	a, err := types.Decode(name, r)
	if err != nil {
		return nil, err
	}
	return value.Domain{A: a}, nil
}

// Marshal renders a Value to envelope bytes.
func Marshal(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes envelope bytes back into a Value.
func Unmarshal(data []byte, types *value.TypeRegistry) (value.Value, error) {
	return DecodeValue(bytes.NewReader(data), types)
}

func writeHeader(w io.Writer, typeName string) error {
	if err := value.WriteUint32(w, uint32(len(typeName))); err != nil {
		return err
	}
	_, err := io.WriteString(w, typeName)
	return err
}

// maxTypeNameLen bounds the envelope type-name so a corrupt length prefix
// cannot drive a giant allocation.
const maxTypeNameLen = 4096

func readHeader(r io.Reader) (string, error) {
	n, err := value.ReadUint32(r)
	if err != nil {
		return "", fmt.Errorf("truncated envelope header: %w", err)
	}
	if n > maxTypeNameLen {
		return "", fmt.Errorf("type name length %d exceeds limit %d", n, maxTypeNameLen)
	}
	name := make([]byte, n)
	if _, err := io.ReadFull(r, name); err != nil {
		return "", fmt.Errorf("truncated type name: %w", err)
	}
	return string(name), nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := value.WriteUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	n, err := value.ReadUint32(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
