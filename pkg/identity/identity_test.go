package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndRecover(t *testing.T) {
	id, err := Generate()
	require.NoError(t, err)
	require.Len(t, strings.Fields(id.Mnemonic), 24)

	recovered, err := FromMnemonic(id.Mnemonic)
	require.NoError(t, err)
	require.Equal(t, id.Public, recovered.Public)
	require.Equal(t, id.Private, recovered.Private)
}

func TestFromMnemonicRejectsGarbage(t *testing.T) {
	_, err := FromMnemonic("not a real mnemonic phrase at all")
	require.ErrorIs(t, err, ErrInvalidMnemonic)
}

func TestRenderParseRoundTrip(t *testing.T) {
	id, err := Generate()
	require.NoError(t, err)

	rendered, err := Render(id.Public)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(rendered, "rostra1"))

	parsed, err := Parse(rendered)
	require.NoError(t, err)
	require.Equal(t, id.Public, parsed)
}

func TestParseRejectsWrongPrefix(t *testing.T) {
	_, err := Parse("bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq")
	require.Error(t, err)
}
