package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = "9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60"

func TestNewSession(t *testing.T) {
	t.Run("deterministic from seed", func(t *testing.T) {
		a, err := NewSession("did:key:z6MkLocal", seed)
		require.NoError(t, err)
		b, err := NewSession("did:key:z6MkLocal", seed)
		require.NoError(t, err)

		assert.Equal(t, a.PublicKey(), b.PublicKey())
		assert.Equal(t, "did:key:z6MkLocal", a.DID())
		assert.Equal(t, "did:key:z6MkLocal#key-1", a.KeyID())
	})

	t.Run("empty seed generates ephemeral key", func(t *testing.T) {
		a, err := NewSession("did:key:z6MkLocal", "")
		require.NoError(t, err)
		b, err := NewSession("did:key:z6MkLocal", "")
		require.NoError(t, err)

		assert.NotEqual(t, a.PublicKey(), b.PublicKey())
	})

	t.Run("did required", func(t *testing.T) {
		_, err := NewSession("", seed)
		assert.Error(t, err)
	})

	t.Run("malformed seed rejected", func(t *testing.T) {
		_, err := NewSession("did:key:z6MkLocal", "zz")
		assert.Error(t, err)

		_, err = NewSession("did:key:z6MkLocal", "abcd")
		assert.Error(t, err)
	})
}
