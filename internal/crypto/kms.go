// Package crypto seals short secrets (saved SQL text) before they are written
// to Firestore.
package crypto

import (
	"context"
	"encoding/base64"

	gcpkms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"

	"github.com/GregMSThompson/riskbi-backend/internal/errs"
)

type kms struct {
	client  *gcpkms.KeyManagementClient
	keyName string
}

func NewKMS(client *gcpkms.KeyManagementClient, keyName string) *kms {
	return &kms{client: client, keyName: keyName}
}

// Seal encrypts plaintext with the configured key and returns base64 text.
func (k *kms) Seal(ctx context.Context, plaintext string) (string, error) {
	resp, err := k.client.Encrypt(ctx, &kmspb.EncryptRequest{
		Name:      k.keyName,
		Plaintext: []byte(plaintext),
	})
	if err != nil {
		return "", errs.NewEncryptionError("failed to encrypt", err)
	}
	return base64.StdEncoding.EncodeToString(resp.Ciphertext), nil
}

func (k *kms) Open(ctx context.Context, sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errs.NewEncryptionError("malformed ciphertext", err)
	}
	resp, err := k.client.Decrypt(ctx, &kmspb.DecryptRequest{
		Name:       k.keyName,
		Ciphertext: raw,
	})
	if err != nil {
		return "", errs.NewEncryptionError("failed to decrypt", err)
	}
	return string(resp.Plaintext), nil
}

// Plain is the sealer used when no key is configured. Text is stored as is.
type Plain struct{}

func (Plain) Seal(_ context.Context, plaintext string) (string, error) { return plaintext, nil }

func (Plain) Open(_ context.Context, sealed string) (string, error) { return sealed, nil }
