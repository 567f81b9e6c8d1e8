package store

import (
	"context"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/yairfalse/lookout/errs"
	"github.com/yairfalse/lookout/types"
)

// CreateAccount persists a new account. The secret must already be
// encrypted. A duplicate access key id is a conflict, never a silent
// delete-and-recreate.
func (s *Store) CreateAccount(ctx context.Context, account types.Account) (types.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account.ID = uuid.NewString()
	account.CreatedAt = s.now().UTC()
	account.UpdatedAt = account.CreatedAt

	err := s.db.Update(func(tx *bbolt.Tx) error {
		keys := tx.Bucket(bucketAccessKeys)
		if existing := keys.Get([]byte(account.AccessKeyID)); existing != nil {
			return errs.New(errs.KindConflict,
				"access key %s already registered to account %s", account.AccessKeyID, existing)
		}

		data, err := encodeAccount(account)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketAccounts).Put([]byte(account.ID), data); err != nil {
			return err
		}
		return keys.Put([]byte(account.AccessKeyID), []byte(account.ID))
	})
	if err != nil {
		if errs.KindOf(err) != "" {
			return types.Account{}, err
		}
		return types.Account{}, errs.Wrap(errs.KindPersistence, err, "cannot create account")
	}
	return account, nil
}

// GetAccount loads one account by id.
func (s *Store) GetAccount(ctx context.Context, accountID string) (types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var account types.Account
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketAccounts).Get([]byte(accountID))
		if data == nil {
			return errs.New(errs.KindNotFound, "account %s not found", accountID)
		}
		var err error
		account, err = decodeAccount(data)
		return err
	})
	if err != nil {
		if errs.KindOf(err) != "" {
			return types.Account{}, err
		}
		return types.Account{}, errs.Wrap(errs.KindPersistence, err, "cannot load account %s", accountID)
	}
	return account, nil
}

// AccountUpdate carries the mutable account fields; nil means unchanged.
// EncryptedSecret must already be sealed by the caller.
type AccountUpdate struct {
	AWSAccountID    *string
	IAMUserName     *string
	AccessKeyID     *string
	EncryptedSecret *string
	Regions         []types.Region
}

// UpdateAccount applies a partial update.
func (s *Store) UpdateAccount(ctx context.Context, accountID string, update AccountUpdate) (types.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var account types.Account
	err := s.db.Update(func(tx *bbolt.Tx) error {
		accounts := tx.Bucket(bucketAccounts)
		data := accounts.Get([]byte(accountID))
		if data == nil {
			return errs.New(errs.KindNotFound, "account %s not found", accountID)
		}
		var err error
		account, err = decodeAccount(data)
		if err != nil {
			return err
		}

		if update.AWSAccountID != nil {
			account.AWSAccountID = *update.AWSAccountID
		}
		if update.IAMUserName != nil {
			account.IAMUserName = *update.IAMUserName
		}
		if update.AccessKeyID != nil && *update.AccessKeyID != account.AccessKeyID {
			keys := tx.Bucket(bucketAccessKeys)
			if existing := keys.Get([]byte(*update.AccessKeyID)); existing != nil {
				return errs.New(errs.KindConflict,
					"access key %s already registered to account %s", *update.AccessKeyID, existing)
			}
			if err := keys.Delete([]byte(account.AccessKeyID)); err != nil {
				return err
			}
			if err := keys.Put([]byte(*update.AccessKeyID), []byte(account.ID)); err != nil {
				return err
			}
			account.AccessKeyID = *update.AccessKeyID
		}
		if update.EncryptedSecret != nil {
			account.EncryptedSecret = *update.EncryptedSecret
		}
		if update.Regions != nil {
			account.Regions = update.Regions
		}
		account.UpdatedAt = s.now().UTC()

		encoded, err := encodeAccount(account)
		if err != nil {
			return err
		}
		return accounts.Put([]byte(account.ID), encoded)
	})
	if err != nil {
		if errs.KindOf(err) != "" {
			return types.Account{}, err
		}
		return types.Account{}, errs.Wrap(errs.KindPersistence, err, "cannot update account %s", accountID)
	}
	return account, nil
}

// DeleteAccount removes an account and every instance it owns.
func (s *Store) DeleteAccount(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removedKeys []string
	err := s.db.Update(func(tx *bbolt.Tx) error {
		accounts := tx.Bucket(bucketAccounts)
		data := accounts.Get([]byte(accountID))
		if data == nil {
			return errs.New(errs.KindNotFound, "account %s not found", accountID)
		}
		account, err := decodeAccount(data)
		if err != nil {
			return err
		}

		// Cascade to owned instances. Collect first, delete after; bbolt
		// cursors must not observe writes mid-scan.
		instances := tx.Bucket(bucketInstances)
		ids := tx.Bucket(bucketInstanceIDs)
		prefix := []byte(accountID + "/")
		var localIDs []string
		c := instances.Cursor()
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			inst, err := decodeInstance(v)
			if err != nil {
				return err
			}
			localIDs = append(localIDs, inst.ID)
			removedKeys = append(removedKeys, string(k))
		}
		for i, k := range removedKeys {
			if err := ids.Delete([]byte(localIDs[i])); err != nil {
				return err
			}
			if err := instances.Delete([]byte(k)); err != nil {
				return err
			}
		}

		if err := tx.Bucket(bucketAccessKeys).Delete([]byte(account.AccessKeyID)); err != nil {
			return err
		}
		return accounts.Delete([]byte(accountID))
	})
	if err != nil {
		if errs.KindOf(err) != "" {
			return err
		}
		return errs.Wrap(errs.KindPersistence, err, "cannot delete account %s", accountID)
	}

	for _, k := range removedKeys {
		s.indexDelete(accountID, k)
	}
	return nil
}

func hasPrefix(key, prefix []byte) bool {
	return len(key) >= len(prefix) && string(key[:len(prefix)]) == string(prefix)
}
