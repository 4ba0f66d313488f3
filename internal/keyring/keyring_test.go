package keyring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeys() []*APIKey {
	return []*APIKey{
		{ID: "key1", Key: "access-key-one-1234", Secret: "secret1"},
		{ID: "key2", Key: "access-key-two-5678", Secret: "secret2"},
		{ID: "key3", Key: "access-key-three-90", Secret: "secret3"},
	}
}

func TestKeyRing_Current(t *testing.T) {
	ring := NewKeyRing(testKeys(), RotationRoundRobin)

	key := ring.Current()
	require.NotNil(t, key)
	assert.Equal(t, "key1", key.ID)
}

func TestKeyRing_Current_Empty(t *testing.T) {
	ring := NewKeyRing(nil, RotationRoundRobin)
	assert.Nil(t, ring.Current())
}

func TestKeyRing_Rotate(t *testing.T) {
	ring := NewKeyRing(testKeys(), RotationRoundRobin)

	ring.Rotate()
	assert.Equal(t, "key2", ring.Current().ID)
	ring.Rotate()
	assert.Equal(t, "key3", ring.Current().ID)
	ring.Rotate()
	assert.Equal(t, "key1", ring.Current().ID)
}

func TestKeyRing_Current_SkipsDisabled(t *testing.T) {
	ring := NewKeyRing(testKeys(), RotationRoundRobin)

	ring.Disable("key1")
	key := ring.Current()
	require.NotNil(t, key)
	assert.Equal(t, "key2", key.ID)
}

func TestKeyRing_AllDisabled(t *testing.T) {
	ring := NewKeyRing(testKeys(), RotationRoundRobin)

	ring.Disable("key1")
	ring.Disable("key2")
	ring.Disable("key3")
	assert.Nil(t, ring.Current())
}

func TestKeyRing_Enable(t *testing.T) {
	ring := NewKeyRing(testKeys(), RotationRoundRobin)

	ring.Disable("key1")
	ring.Enable("key1")

	key := ring.Current()
	require.NotNil(t, key)
	assert.Equal(t, "key1", key.ID)
	assert.Equal(t, 0, key.ErrorCount)
}

func TestKeyRing_OnError_RotatesWhenConfigured(t *testing.T) {
	ring := NewKeyRing(testKeys(), RotationOnError)

	ring.OnError(errors.New("sign error"))
	assert.Equal(t, "key2", ring.Current().ID)

	ring.OnError(errors.New("sign error"))
	assert.Equal(t, "key3", ring.Current().ID)
}

func TestKeyRing_OnError_RoundRobinStays(t *testing.T) {
	ring := NewKeyRing(testKeys(), RotationRoundRobin)

	ring.OnError(errors.New("sign error"))
	assert.Equal(t, "key1", ring.Current().ID)
}

func TestKeyRing_Add(t *testing.T) {
	ring := NewKeyRing(testKeys(), RotationRoundRobin)

	ring.Add(&APIKey{ID: "key4", Key: "access-key-four-000", Secret: "secret4"})
	ring.Add(&APIKey{ID: "key1", Key: "duplicate", Secret: "duplicate"})

	ring.Rotate()
	ring.Rotate()
	ring.Rotate()
	key := ring.Current()
	require.NotNil(t, key)
	assert.Equal(t, "key4", key.ID)
	assert.Equal(t, "secret4", key.Secret)
}

func TestKeyRing_DoesNotAliasInput(t *testing.T) {
	keys := testKeys()
	ring := NewKeyRing(keys, RotationRoundRobin)

	keys[0].Secret = "mutated"
	assert.Equal(t, "secret1", ring.Current().Secret)
}

func TestAPIKey_StringMasksKey(t *testing.T) {
	key := &APIKey{ID: "key1", Key: "access-key-one-1234"}

	s := key.String()
	assert.Contains(t, s, "key1")
	assert.Contains(t, s, "acce****1234")
	assert.NotContains(t, s, "access-key-one-1234")

	short := &APIKey{ID: "key2", Key: "tiny"}
	assert.Contains(t, short.String(), "****")
	assert.NotContains(t, short.String(), "tiny")
}
