package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestSealOpenRoundTrip(t *testing.T) {
	svc, err := New(testKey)
	require.NoError(t, err)
	require.True(t, svc.Configured())

	sealed, err := svc.SealString("ABCDE1234F")
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(sealed), "ABCDE1234F"))

	plain, err := svc.OpenString(sealed)
	require.NoError(t, err)
	assert.Equal(t, "ABCDE1234F", plain)
}

func TestOpenReadsLegacyPlaintext(t *testing.T) {
	svc, err := New(testKey)
	require.NoError(t, err)

	plain, err := svc.OpenString([]byte("123456789012"))
	require.NoError(t, err)
	assert.Equal(t, "123456789012", plain)
}

func TestUnconfiguredPassesThrough(t *testing.T) {
	svc, err := New("")
	require.NoError(t, err)
	assert.False(t, svc.Configured())

	sealed, err := svc.SealString("9988")
	require.NoError(t, err)
	assert.Equal(t, []byte("9988"), sealed)

	empty, err := svc.SealString("")
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestOpenSealedWithoutKeyFails(t *testing.T) {
	keyed, err := New(testKey)
	require.NoError(t, err)
	sealed, err := keyed.SealString("secret")
	require.NoError(t, err)

	unkeyed, err := New("")
	require.NoError(t, err)
	_, err = unkeyed.OpenString(sealed)
	require.Error(t, err)
}

func TestNewRejectsShortKey(t *testing.T) {
	_, err := New("short")
	require.Error(t, err)
}
