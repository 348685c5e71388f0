package hashing

import (
	"crypto/sha256"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/invariant/internal/value"
)

// fixedArtifact is a minimal Domain implementation with a pinned hash.
type fixedArtifact struct {
	hash byte
}

func (a fixedArtifact) TypeName() string { return "test.Fixed" }
func (a fixedArtifact) StableHash() [32]byte {
	var out [32]byte
	out[0] = a.hash
	return out
}
func (a fixedArtifact) EncodeTo(io.Writer) error      { return nil }
func (a fixedArtifact) Attrs() map[string]value.Value { return nil }

func TestScalarHashes(t *testing.T) {
	assert.Equal(t, sha256.Sum256([]byte("None")), HashValue(value.Null{}))
	assert.Equal(t, sha256.Sum256([]byte("true")), HashValue(value.Bool(true)))
	assert.Equal(t, sha256.Sum256([]byte("false")), HashValue(value.Bool(false)))
	assert.Equal(t, sha256.Sum256([]byte("-42")), HashValue(value.NewInt(-42)))
	assert.Equal(t, sha256.Sum256([]byte("hello")), HashValue(value.Str("hello")))

	d, err := value.ParseDecimal("1.50")
	require.NoError(t, err)
	assert.Equal(t, sha256.Sum256([]byte("1.5")), HashValue(d))
}

func TestMapHashIgnoresConstructionOrder(t *testing.T) {
	a := value.Map{"alpha": value.NewInt(1), "beta": value.NewInt(2), "gamma": value.Str("x")}
	b := value.Map{}
	b["gamma"] = value.Str("x")
	b["beta"] = value.NewInt(2)
	b["alpha"] = value.NewInt(1)
	assert.Equal(t, HashValue(a), HashValue(b))
}

func TestMapHashDependsOnContent(t *testing.T) {
	a := value.Map{"k": value.NewInt(1)}
	b := value.Map{"k": value.NewInt(2)}
	c := value.Map{"j": value.NewInt(1)}
	assert.NotEqual(t, HashValue(a), HashValue(b))
	assert.NotEqual(t, HashValue(a), HashValue(c))
}

func TestListHashIsOrderSensitive(t *testing.T) {
	a := value.List{value.NewInt(1), value.NewInt(2)}
	b := value.List{value.NewInt(2), value.NewInt(1)}
	assert.NotEqual(t, HashValue(a), HashValue(b))
}

func TestDomainHashIsOpaque(t *testing.T) {
	a := fixedArtifact{hash: 7}
	assert.Equal(t, a.StableHash(), HashValue(value.Domain{A: a}))
	assert.NotEqual(t, HashValue(value.Domain{A: fixedArtifact{hash: 8}}),
		HashValue(value.Domain{A: a}))
}

func TestManifestDigest(t *testing.T) {
	m := map[string]value.Value{"a": value.NewInt(5), "b": value.NewInt(3)}
	digest := ManifestDigest(m)
	assert.Len(t, digest, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", digest)

	// Structurally equal manifests produce byte-equal digests.
	same := map[string]value.Value{"b": value.NewInt(3), "a": value.NewInt(5)}
	assert.Equal(t, digest, ManifestDigest(same))

	// The manifest hash is the hash of the equivalent Map value.
	assert.Equal(t, Digest(HashValue(value.Map(m))), digest)
}

func TestNestedComposites(t *testing.T) {
	m := map[string]value.Value{
		"outer": value.Map{
			"list": value.List{value.NewInt(1), value.Str("two")},
		},
	}
	first := ManifestDigest(m)
	second := ManifestDigest(m)
	assert.Equal(t, first, second)
}
