package storage

import (
	"time"

	"github.com/PiotrWarzachowski/blue-launcher/internal/platform/microsoft"
)

type Storage struct {
	basePath string
	key      []byte
}

// StoredAccount is the signed-in account as written to disk.
type StoredAccount struct {
	Tokens  microsoft.TokenSet      `json:"tokens"`
	Profile microsoft.PlayerProfile `json:"profile"`
	SavedAt time.Time               `json:"saved_at"`
}

func (a *StoredAccount) Account() *microsoft.Account {
	return &microsoft.Account{Tokens: a.Tokens, Profile: a.Profile}
}
