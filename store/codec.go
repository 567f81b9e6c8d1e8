package store

import (
	"encoding/json"

	"github.com/yairfalse/lookout/types"
)

func encodeAccount(a types.Account) ([]byte, error) {
	return json.Marshal(struct {
		types.Account
		EncryptedSecret string `json:"encrypted_secret"`
	}{Account: a, EncryptedSecret: a.EncryptedSecret})
}

func decodeAccount(data []byte) (types.Account, error) {
	var rec struct {
		types.Account
		EncryptedSecret string `json:"encrypted_secret"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return types.Account{}, err
	}
	rec.Account.EncryptedSecret = rec.EncryptedSecret
	return rec.Account, nil
}

func encodeInstance(i types.Instance) ([]byte, error) {
	return json.Marshal(i)
}

func decodeInstance(data []byte) (types.Instance, error) {
	var i types.Instance
	err := json.Unmarshal(data, &i)
	return i, err
}
