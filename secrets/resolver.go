package secrets

import (
	"context"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/types"
)

// Resolver turns an account record into plaintext credentials. The cipher
// is injected at construction; there is no ambient key lookup.
type Resolver struct {
	cipher Cipher
}

// NewResolver creates a resolver around the configured cipher.
func NewResolver(cipher Cipher) *Resolver {
	return &Resolver{cipher: cipher}
}

// Resolve decrypts the account's stored secret. Pure and repeatable given
// the same ciphertext and key material; fails with a decryption error when
// the ciphertext does not match the active key (e.g. key rotation without
// re-encryption).
func (r *Resolver) Resolve(ctx context.Context, account types.Account) (types.Credentials, error) {
	secret, err := r.cipher.Decrypt(ctx, account.EncryptedSecret)
	if err != nil {
		return types.Credentials{}, errs.Wrap(errs.KindDecryption, err,
			"cannot decrypt secret for account %s", account.ID)
	}
	return types.Credentials{
		AccessKeyID: account.AccessKeyID,
		Secret:      secret,
	}, nil
}

// Seal encrypts a plaintext secret for persistence.
func (r *Resolver) Seal(ctx context.Context, plaintext string) (string, error) {
	ciphertext, err := r.cipher.Encrypt(ctx, plaintext)
	if err != nil {
		return "", errs.Wrap(errs.KindDecryption, err, "cannot encrypt secret")
	}
	return ciphertext, nil
}
