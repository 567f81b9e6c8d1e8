package secrets

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// KMSAPI is the subset of the KMS client the cipher needs.
type KMSAPI interface {
	Encrypt(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// KMSCipher delegates the secret codec to a KMS key. The KMS ciphertext
// blob embeds the key id, so Decrypt needs no key reference.
type KMSCipher struct {
	client KMSAPI
	keyID  string
}

// NewKMSCipher creates a KMS-backed cipher for the given key id.
func NewKMSCipher(client KMSAPI, keyID string) *KMSCipher {
	return &KMSCipher{client: client, keyID: keyID}
}

// NewKMSCipherFromRegion builds the KMS client from ambient AWS config.
// The operator credentials used here are the service's own, never an
// account's stored pair.
func NewKMSCipherFromRegion(ctx context.Context, region, keyID string) (*KMSCipher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewKMSCipher(kms.NewFromConfig(cfg), keyID), nil
}

func (c *KMSCipher) Encrypt(ctx context.Context, plaintext string) (string, error) {
	out, err := c.client.Encrypt(ctx, &kms.EncryptInput{
		KeyId:     aws.String(c.keyID),
		Plaintext: []byte(plaintext),
	})
	if err != nil {
		return "", fmt.Errorf("kms encrypt failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(out.CiphertextBlob), nil
}

func (c *KMSCipher) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("ciphertext is not valid base64: %w", err)
	}
	out, err := c.client.Decrypt(ctx, &kms.DecryptInput{CiphertextBlob: blob})
	if err != nil {
		return "", fmt.Errorf("kms decrypt failed: %w", err)
	}
	return string(out.Plaintext), nil
}
