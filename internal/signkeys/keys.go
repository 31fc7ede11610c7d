package signkeys

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io/ioutil"
	"multisig-vault/internal/model"
	"strings"

	"github.com/btcsuite/btcd/btcec"
	"github.com/hyperledger/sawtooth-sdk-go/signing"
)

type UserKeys struct {
	PrivateKey signing.PrivateKey
	PublicKey  signing.PublicKey
}

func (u UserKeys) GetSigner() *signing.Signer {
	cryptoFactory := signing.NewCryptoFactory(signing.NewSecp256k1Context())
	return cryptoFactory.NewSigner(u.PrivateKey)
}

// Identity is how the multisig family sees the owner of the keys
func (u UserKeys) Identity() model.Identity {
	return model.Identity(u.PublicKey.AsHex())
}

// source: https://github.com/ethereum/go-ethereum/blob/86d547707965685cef732aa28c15e6811ea98408/crypto/secp256k1/secp256_test.go#L19
func GenerateKeys() (UserKeys, error) {
	key, err := ecdsa.GenerateKey(btcec.S256(), rand.Reader)
	if err != nil {
		return UserKeys{}, errors.New("failed to generate the keys: " + err.Error())
	}

	privkey := make([]byte, 32)
	blob := key.D.Bytes()
	copy(privkey[32-len(blob):], blob)

	return FromPrivateKey(privkey), nil
}

// FromPrivateKey derives the compressed public key, the form sawtooth puts in transaction headers
func FromPrivateKey(privkey []byte) UserKeys {
	private := signing.NewSecp256k1PrivateKey(privkey)
	return UserKeys{
		PrivateKey: private,
		PublicKey:  signing.NewSecp256k1Context().GetPublicKey(private),
	}
}

func FromHex(privateKeyHex string) (UserKeys, error) {
	privkey, err := hex.DecodeString(strings.TrimSpace(privateKeyHex))
	if err != nil {
		return UserKeys{}, errors.New("private key is not hex encoded: " + err.Error())
	}
	if len(privkey) != 32 {
		return UserKeys{}, errors.New("private key must be 32 bytes long")
	}

	return FromPrivateKey(privkey), nil
}

func ReadKeyFile(path string) (UserKeys, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return UserKeys{}, errors.New("failed to read the key file: " + err.Error())
	}
	return FromHex(string(data))
}

func WriteKeyFile(path string, keys UserKeys) error {
	if err := ioutil.WriteFile(path, []byte(keys.PrivateKey.AsHex()+"\n"), 0600); err != nil {
		return errors.New("failed to write the key file: " + err.Error())
	}
	return nil
}
