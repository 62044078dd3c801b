package identity

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	bip39 "github.com/tyler-smith/go-bip39"

	"github.com/rostra-dev/rostra/pkg/types"
)

// mnemonicEntropyBits yields a 24-word BIP-39 phrase.
const mnemonicEntropyBits = 256

// hrp is the bech32 human-readable prefix for a rendered identity.
const hrp = "rostra"

var ErrInvalidMnemonic = errors.New("identity: invalid mnemonic")

// Identity is a generated or recovered keypair plus its recovery phrase.
type Identity struct {
	Public types.AuthorID
	Private ed25519.PrivateKey
	Mnemonic string
}

// Generate creates a fresh 24-word mnemonic and derives its keypair.
func Generate() (*Identity, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return nil, fmt.Errorf("identity: generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("identity: generate mnemonic: %w", err)
	}
	return FromMnemonic(mnemonic)
}

// FromMnemonic recovers a keypair from an existing 24-word phrase.
func FromMnemonic(mnemonic string) (*Identity, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed := bip39.NewSeed(mnemonic, "")
	priv := ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])
	pub := priv.Public().(ed25519.PublicKey)

	var author types.AuthorID
	copy(author[:], pub)

	return &Identity{
		Public: author,
		Private: priv,
		Mnemonic: mnemonic,
	}, nil
}

// Render encodes an author id as a bech32 string for display (e.g.
// "rostra1...").
func Render(author types.AuthorID) (string, error) {
	data, err := bech32.ConvertBits(author[:], 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("identity: convert bits: %w", err)
	}
	return bech32.Encode(hrp, data)
}

// Parse decodes a bech32-rendered identity back into an author id.
func Parse(s string) (types.AuthorID, error) {
	var author types.AuthorID

	gotHRP, data, err := bech32.Decode(s)
	if err != nil {
		return author, fmt.Errorf("identity: decode: %w", err)
	}
	if gotHRP != hrp {
		return author, fmt.Errorf("identity: unexpected prefix %q", gotHRP)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return author, fmt.Errorf("identity: convert bits: %w", err)
	}
	if len(raw) != len(author) {
		return author, fmt.Errorf("identity: expected %d bytes, got %d", len(author), len(raw))
	}
	copy(author[:], raw)
	return author, nil
}
