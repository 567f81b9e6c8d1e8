package types

import "time"

// Account holds one set of cloud credentials and the regions they cover.
// EncryptedSecret is ciphertext; only the secrets resolver may decrypt it,
// and only at the moment of an outbound call.
type Account struct {
	ID              string    `json:"id"`
	AWSAccountID    string    `json:"aws_account_id"`
	IAMUserName     string    `json:"iam_user_name"`
	AccessKeyID     string    `json:"access_key_id"`
	EncryptedSecret string    `json:"-"`
	Regions         []Region  `json:"regions"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Credentials is a resolved, plaintext credential pair. It is never
// persisted and never serialized.
type Credentials struct {
	AccessKeyID string `json:"-"`
	Secret      string `json:"-"`
}
