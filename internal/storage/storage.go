package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/PiotrWarzachowski/blue-launcher/internal/platform/microsoft"
)

const (
	AccountDir  = ".local/blue-launcher/db"
	AccountFile = "account.enc"
	KeyFile     = ".key"
)

// NewAccountStorage opens the store under the user's home directory.
func NewAccountStorage() (*Storage, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewStorage(filepath.Join(homeDir, AccountDir))
}

func NewStorage(basePath string) (*Storage, error) {
	if err := os.MkdirAll(basePath, 0700); err != nil {
		return nil, fmt.Errorf("failed to create account directory: %w", err)
	}

	s := &Storage{
		basePath: basePath,
	}

	if err := s.loadOrGenerateKey(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) loadOrGenerateKey() error {
	keyPath := filepath.Join(s.basePath, KeyFile)

	keyData, err := os.ReadFile(keyPath)
	if err == nil && len(keyData) == 32 {
		s.key = keyData
		return nil
	}

	s.key = make([]byte, 32)
	if _, err := rand.Read(s.key); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}

	if err := os.WriteFile(keyPath, s.key, 0600); err != nil {
		return fmt.Errorf("failed to save encryption key: %w", err)
	}

	return nil
}

func (s *Storage) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (s *Storage) encrypt(plaintext []byte) ([]byte, error) {
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *Storage) decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := s.gcm()
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// SaveAccount stores a completed account. Partial token sets are refused so
// the launcher never loads one back.
func (s *Storage) SaveAccount(account *microsoft.Account) error {
	if account == nil || !account.Tokens.Valid() {
		return errors.New("refusing to store an incomplete token set")
	}

	stored := &StoredAccount{
		Tokens:  account.Tokens,
		Profile: account.Profile,
		SavedAt: time.Now().UTC(),
	}

	jsonData, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	encrypted, err := s.encrypt(jsonData)
	if err != nil {
		return fmt.Errorf("failed to encrypt account: %w", err)
	}

	accountPath := filepath.Join(s.basePath, AccountFile)
	tmp := accountPath + ".tmp"
	if err := os.WriteFile(tmp, encrypted, 0600); err != nil {
		return fmt.Errorf("failed to write account file: %w", err)
	}
	if err := os.Rename(tmp, accountPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write account file: %w", err)
	}

	return nil
}

// LoadAccount returns nil without error when nobody is signed in.
func (s *Storage) LoadAccount() (*StoredAccount, error) {
	accountPath := filepath.Join(s.basePath, AccountFile)

	encrypted, err := os.ReadFile(accountPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read account file: %w", err)
	}

	decrypted, err := s.decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt account: %w", err)
	}

	var stored StoredAccount
	if err := json.Unmarshal(decrypted, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &stored, nil
}

func (s *Storage) HasAccount() bool {
	accountPath := filepath.Join(s.basePath, AccountFile)
	_, err := os.Stat(accountPath)
	return err == nil
}

func (s *Storage) DeleteAccount() error {
	accountPath := filepath.Join(s.basePath, AccountFile)
	err := os.Remove(accountPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func (s *Storage) GetBasePath() string {
	return s.basePath
}
