/*
Package identity generates and recovers Rostra identities: an Ed25519
keypair derived from a 24-word BIP-39 mnemonic, plus a bech32 human-readable
rendering of the public key for display and CLI/API use.

The private key never leaves memory longer than required; callers needing
durable storage write the mnemonic to a secret file themselves.
*/
package identity
