package hashing

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/vk/invariant/internal/value"
)

// HashValue returns the canonical hash of v. It is total on the Value
// universe and byte-identical across machines for structurally equal inputs.
func HashValue(v value.Value) [32]byte {
	switch vv := v.(type) {
	case value.Null:
		return sha256.Sum256([]byte("None"))
	case value.Bool:
		if vv {
			return sha256.Sum256([]byte("true"))
		}
		return sha256.Sum256([]byte("false"))
	case value.Int:
		return sha256.Sum256([]byte(vv.String()))
	case value.Decimal:
		return sha256.Sum256([]byte(vv.Canonical()))
	case value.Str:
		return sha256.Sum256([]byte(vv))
	case value.List:
		h := sha256.New()
		for _, e := range vv {
			eh := HashValue(e)
			h.Write(eh[:])
		}
		return sum32(h.Sum(nil))
	case value.Map:
		h := sha256.New()
		for _, k := range vv.SortedKeys() {
			kh := HashValue(value.Str(k))
			h.Write(kh[:])
			valh := HashValue(vv[k])
			h.Write(valh[:])
		}
		return sum32(h.Sum(nil))
	case value.Domain:
		return vv.A.StableHash()
	}
	// The union is closed; a nil Value is the only way here.
	panic("hashing: nil value")
}

// HashManifest hashes a resolved parameter map.
func HashManifest(m map[string]value.Value) [32]byte {
	return HashValue(value.Map(m))
}

// Digest renders a hash as the 64-character lowercase hex digest used in
// store keys and on-disk paths.
func Digest(h [32]byte) string {
	return hex.EncodeToString(h[:])
}

// ManifestDigest is the common composition of HashManifest and Digest.
func ManifestDigest(m map[string]value.Value) string {
	return Digest(HashManifest(m))
}

func sum32(b []byte) [32]byte {
	var out [32]byte
	copy(out[:], b)
	return out
}
