// Package service exposes high-level vault operations for the CLI and GUI.
// It glues master-account authentication, the session encryption context,
// and the sqlite-backed store together; front ends never touch those parts
// directly.
package service

import (
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Hussein-Mazeh/SecurePM/auth"
	"github.com/Hussein-Mazeh/SecurePM/internal/db"
	"github.com/Hussein-Mazeh/SecurePM/internal/vault"
	"github.com/Hussein-Mazeh/SecurePM/krypto"
)

// Service owns the database handle and the active session, if any.
type Service struct {
	db      *db.DB
	session *vault.Session
	log     *zap.Logger
}

// EntryFields carries the cleartext metadata of a vault entry. The secret
// travels separately and only ever as plaintext-in, plaintext-out.
type EntryFields struct {
	Title    string
	Username string
	Website  string
	Notes    string
	Category string
	Icon     []byte
	Favorite bool
}

// Entry is a fully loaded vault entry with the decrypted secret. The stored
// ciphertext is never exposed to callers.
type Entry struct {
	ID        int64
	Title     string
	Username  string
	Website   string
	Notes     string
	Category  string
	Icon      []byte
	Favorite  bool
	Deleted   bool
	CreatedAt string
	UpdatedAt string
	Secret    string
}

// ListItem is a minimal row for list panels.
type ListItem struct {
	ID       int64
	Icon     []byte
	Title    string
	Username string
}

// Filter selects a listing scope. The zero value lists all live entries.
type Filter = db.ListFilter

// Category is a display grouping with its color hint.
type Category struct {
	Name  string
	Color string
}

// New opens (creating if needed) the vault database at dbPath and returns a
// locked service. Pass zap.NewNop() when logging is not wanted.
func New(dbPath string, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}

	handle, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open vault database (%s): %w", dbPath, err)
	}

	return &Service{db: handle, log: log}, nil
}

// Close releases the database and wipes any active session.
func (s *Service) Close() {
	s.Logout()
	if s.db != nil {
		_ = db.Close(s.db)
	}
}

// NeedsSignup reports whether no master account exists yet.
func (s *Service) NeedsSignup() (bool, error) {
	n, err := db.CountMasterAccounts(s.db)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// SignUp creates the single master account. It fails with ErrAccountExists
// when one is already present; the account is never overwritten. The
// passphrase must satisfy the character policy, so no front end can create
// an account with a weak master password. Signing up does not unlock the
// vault: callers log in afterwards.
func (s *Service) SignUp(username, passphrase string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New("username is required")
	}
	if err := auth.ValidateMasterPassword(passphrase); err != nil {
		return err
	}

	n, err := db.CountMasterAccounts(s.db)
	if err != nil {
		return err
	}
	if n > 0 {
		return vault.ErrAccountExists
	}

	salt, err := krypto.NewRandomSalt(krypto.SaltLengthBytes)
	if err != nil {
		return fmt.Errorf("generate account salt: %w", err)
	}
	saltStr := encodeAccountSalt(salt)

	hash, err := krypto.HashPassword(passphrase+saltStr, krypto.DefaultArgon2Params())
	if err != nil {
		return fmt.Errorf("hash master password: %w", err)
	}

	if err := db.InsertMasterAccount(s.db, db.MasterAccountRow{
		Username:     username,
		PasswordHash: hash,
		Salt:         saltStr,
	}); err != nil {
		return err
	}

	s.log.Info("master account created", zap.String("username", username))
	return nil
}

// Login verifies the master credentials and, on success, opens the session
// encryption context. A wrong passphrase and an unknown username both yield
// ErrAuthenticationFailed.
func (s *Service) Login(username, passphrase string) error {
	account, err := db.GetMasterAccount(s.db, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return vault.ErrAuthenticationFailed
		}
		return err
	}

	if err := krypto.VerifyPassword(passphrase+account.Salt, account.PasswordHash); err != nil {
		if errors.Is(err, krypto.ErrHashMismatch) {
			return vault.ErrAuthenticationFailed
		}
		return fmt.Errorf("verify master password: %w", err)
	}

	s.Logout()
	s.session = vault.NewSession(passphrase)
	s.log.Info("vault unlocked", zap.String("username", username))
	return nil
}

// Logout wipes the session key material. Safe to call when already locked.
func (s *Service) Logout() {
	if s.session != nil {
		s.session.Close()
		s.session = nil
		s.log.Info("vault locked")
	}
}

// IsUnlocked reports whether an encryption context is active.
func (s *Service) IsUnlocked() bool {
	return s.session.Active()
}

// AddEntry seals the secret under the active session and stores a new entry.
// The title must not collide with a live entry; a trashed entry does not
// block the title.
func (s *Service) AddEntry(fields EntryFields, secret string) (int64, error) {
	if !s.session.Active() {
		return 0, vault.ErrNotAuthenticated
	}
	if fields.Title == "" {
		return 0, errors.New("title is required")
	}

	exists, err := db.LiveTitleExists(s.db, fields.Title)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, vault.ErrDuplicateTitle
	}

	row := rowFromFields(fields)
	if secret != "" {
		sealed, err := s.session.EncryptSecret(secret)
		if err != nil {
			return 0, err
		}
		row.EncryptedSecret = []byte(sealed)
	}

	id, err := db.InsertEntry(s.db, row)
	if err != nil {
		return 0, err
	}

	s.log.Info("entry added", zap.Int64("id", id))
	return id, nil
}

// GetEntry loads one entry by id and decrypts its secret. An absent secret
// yields Secret == ""; a failed decryption is a typed error.
func (s *Service) GetEntry(id int64) (*Entry, error) {
	row, err := db.GetEntryByID(s.db, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return s.loadEntry(row)
}

// GetEntryByTitle is GetEntry keyed by title.
func (s *Service) GetEntryByTitle(title string) (*Entry, error) {
	row, err := db.GetEntryByTitle(s.db, title)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return s.loadEntry(row)
}

func (s *Service) loadEntry(row *db.EntryRow) (*Entry, error) {
	entry := &Entry{
		ID:        row.ID,
		Title:     row.Title,
		Username:  row.Username,
		Website:   row.Website,
		Notes:     row.Notes,
		Category:  row.Category,
		Icon:      row.Icon,
		Favorite:  row.Favorite,
		Deleted:   row.Deleted,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	if len(row.EncryptedSecret) == 0 {
		return entry, nil
	}

	if !s.session.Active() {
		return nil, vault.ErrNotAuthenticated
	}
	secret, err := s.session.DecryptSecret(string(row.EncryptedSecret))
	if err != nil {
		s.log.Warn("entry decryption failed", zap.Int64("id", row.ID))
		return nil, err
	}
	entry.Secret = secret

	return entry, nil
}

// UpdateEntry replaces an entry's metadata and re-encrypts the secret under
// a fresh salt and nonce. An empty secret clears any stored ciphertext,
// mirroring AddEntry: such entries read back with Secret == "" and need no
// session. created_at is preserved.
func (s *Service) UpdateEntry(id int64, fields EntryFields, secret string) error {
	if !s.session.Active() {
		return vault.ErrNotAuthenticated
	}
	if fields.Title == "" {
		return errors.New("title is required")
	}

	current, err := db.GetEntryByID(s.db, id)
	if err != nil {
		return mapNotFound(err)
	}
	if fields.Title != current.Title {
		exists, err := db.LiveTitleExists(s.db, fields.Title)
		if err != nil {
			return err
		}
		if exists {
			return vault.ErrDuplicateTitle
		}
	}

	row := rowFromFields(fields)
	row.ID = id
	if secret != "" {
		sealed, err := s.session.EncryptSecret(secret)
		if err != nil {
			return err
		}
		row.EncryptedSecret = []byte(sealed)
	}

	if err := db.UpdateEntry(s.db, row); err != nil {
		return mapNotFound(err)
	}

	s.log.Info("entry updated", zap.Int64("id", id))
	return nil
}

// SetFavorite toggles the favorite flag. Metadata only; the stored secret is
// untouched, so no session is required.
func (s *Service) SetFavorite(id int64, favorite bool) error {
	if err := db.SetFavorite(s.db, id, favorite); err != nil {
		return mapNotFound(err)
	}
	return nil
}

// SoftDelete moves an entry to the trash. It stays queryable via the trash
// listing until purged.
func (s *Service) SoftDelete(id int64) error {
	if err := db.SetDeleted(s.db, id, true); err != nil {
		return mapNotFound(err)
	}
	s.log.Info("entry trashed", zap.Int64("id", id))
	return nil
}

// Restore brings a trashed entry back. If a live entry took the title in the
// meantime, restoring would break title uniqueness and fails with
// ErrDuplicateTitle.
func (s *Service) Restore(id int64) error {
	row, err := db.GetEntryByID(s.db, id)
	if err != nil {
		return mapNotFound(err)
	}
	if !row.Deleted {
		return nil
	}

	exists, err := db.LiveTitleExists(s.db, row.Title)
	if err != nil {
		return err
	}
	if exists {
		return vault.ErrDuplicateTitle
	}

	if err := db.SetDeleted(s.db, id, false); err != nil {
		return mapNotFound(err)
	}
	s.log.Info("entry restored", zap.Int64("id", id))
	return nil
}

// Purge irreversibly removes an entry. Front ends only offer it from the
// trash view; the store itself does not require deleted = 1.
func (s *Service) Purge(id int64) error {
	if err := db.PurgeEntry(s.db, id); err != nil {
		return mapNotFound(err)
	}
	s.log.Info("entry purged", zap.Int64("id", id))
	return nil
}

// ListEntries returns lightweight rows for the given scope, ordered by
// title. Secrets are never decrypted for listings.
func (s *Service) ListEntries(filter Filter, search string) ([]ListItem, error) {
	rows, err := db.ListEntries(s.db, filter, search)
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, ListItem{ID: r.ID, Icon: r.Icon, Title: r.Title, Username: r.Username})
	}
	return items, nil
}

// AddCategory registers a new category name with a display color. A name
// already in use fails with ErrDuplicateCategory.
func (s *Service) AddCategory(name, color string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("category name is required")
	}
	if color == "" {
		color = "#1239A6"
	}

	exists, err := db.CategoryExists(s.db, name)
	if err != nil {
		return err
	}
	if exists {
		return vault.ErrDuplicateCategory
	}

	return db.InsertCategory(s.db, db.CategoryRow{Name: name, Color: color})
}

// ListCategories returns all categories ordered by name.
func (s *Service) ListCategories() ([]Category, error) {
	rows, err := db.ListCategories(s.db)
	if err != nil {
		return nil, err
	}

	categories := make([]Category, 0, len(rows))
	for _, r := range rows {
		categories = append(categories, Category{Name: r.Name, Color: r.Color})
	}
	return categories, nil
}

// DeleteCategory removes a category; entries that referenced it keep
// everything but their category field.
func (s *Service) DeleteCategory(name string) error {
	return db.DeleteCategory(s.db, name)
}

// SetSetting stores an application setting.
func (s *Service) SetSetting(key, value string) error {
	return db.SetSetting(s.db, key, value)
}

// GetSetting reads an application setting, "" when unset.
func (s *Service) GetSetting(key string) (string, error) {
	return db.GetSetting(s.db, key)
}

// encodeAccountSalt renders the account salt in the textual form that gets
// concatenated to the passphrase before hashing. The encoding is part of the
// stored-hash contract: changing it would invalidate every existing account.
func encodeAccountSalt(salt []byte) string {
	return base64.URLEncoding.EncodeToString(salt)
}

func rowFromFields(f EntryFields) db.EntryRow {
	return db.EntryRow{
		Title:    f.Title,
		Username: f.Username,
		Website:  f.Website,
		Notes:    f.Notes,
		Category: f.Category,
		Icon:     f.Icon,
		Favorite: f.Favorite,
	}
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return vault.ErrNotFound
	}
	return err
}
