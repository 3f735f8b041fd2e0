package db_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hussein-Mazeh/SecurePM/internal/db"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close(d)
	})
	return d
}

func TestOpenCreatesDatabaseFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "vault.db")

	d, err := db.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close(d)
	})

	_, err = os.Stat(dbPath)
	require.NoError(t, err, "expected database file to exist at %q", dbPath)
}

func TestMigrateIsIdempotent(t *testing.T) {
	d := openTestDB(t)
	require.NoError(t, db.Migrate(d))
	require.NoError(t, db.Migrate(d))
}

func TestInsertAndGetEntry(t *testing.T) {
	d := openTestDB(t)

	id, err := db.InsertEntry(d, db.EntryRow{
		Title:           "Email",
		Username:        "a@b.com",
		Website:         "mail.example.com",
		Notes:           "personal",
		Category:        "Personal",
		EncryptedSecret: []byte("sealed-blob"),
	})
	require.NoError(t, err)
	require.Positive(t, id)

	byID, err := db.GetEntryByID(d, id)
	require.NoError(t, err)
	assert.Equal(t, "Email", byID.Title)
	assert.Equal(t, "a@b.com", byID.Username)
	assert.Equal(t, "Personal", byID.Category)
	assert.Equal(t, []byte("sealed-blob"), byID.EncryptedSecret)
	assert.False(t, byID.Favorite)
	assert.False(t, byID.Deleted)
	assert.NotEmpty(t, byID.CreatedAt)

	byTitle, err := db.GetEntryByTitle(d, "Email")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, byTitle.ID)

	_, err = db.GetEntryByID(d, 9999)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLiveTitleExists(t *testing.T) {
	d := openTestDB(t)

	id, err := db.InsertEntry(d, db.EntryRow{Title: "Bank"})
	require.NoError(t, err)

	exists, err := db.LiveTitleExists(d, "Bank")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, db.SetDeleted(d, id, true))
	exists, err = db.LiveTitleExists(d, "Bank")
	require.NoError(t, err)
	assert.False(t, exists, "trashed entry must not hold the title")
}

func TestUpdateEntryPreservesCreatedAt(t *testing.T) {
	d := openTestDB(t)

	id, err := db.InsertEntry(d, db.EntryRow{Title: "Shop", EncryptedSecret: []byte("v1")})
	require.NoError(t, err)

	before, err := db.GetEntryByID(d, id)
	require.NoError(t, err)

	err = db.UpdateEntry(d, db.EntryRow{
		ID:              id,
		Title:           "Shop",
		Username:        "buyer",
		EncryptedSecret: []byte("v2"),
	})
	require.NoError(t, err)

	after, err := db.GetEntryByID(d, id)
	require.NoError(t, err)
	assert.Equal(t, "buyer", after.Username)
	assert.Equal(t, []byte("v2"), after.EncryptedSecret)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)

	err = db.UpdateEntry(d, db.EntryRow{ID: 9999, Title: "missing"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSoftDeleteRestorePurge(t *testing.T) {
	d := openTestDB(t)

	id, err := db.InsertEntry(d, db.EntryRow{Title: "Temp"})
	require.NoError(t, err)

	require.NoError(t, db.SetDeleted(d, id, true))
	row, err := db.GetEntryByID(d, id)
	require.NoError(t, err)
	assert.True(t, row.Deleted)

	require.NoError(t, db.SetDeleted(d, id, false))
	row, err = db.GetEntryByID(d, id)
	require.NoError(t, err)
	assert.False(t, row.Deleted)

	require.NoError(t, db.PurgeEntry(d, id))
	_, err = db.GetEntryByID(d, id)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.ErrorIs(t, db.PurgeEntry(d, id), sql.ErrNoRows)
}

func TestListEntriesFiltersAndOrdering(t *testing.T) {
	d := openTestDB(t)

	mustInsert := func(e db.EntryRow) int64 {
		id, err := db.InsertEntry(d, e)
		require.NoError(t, err)
		return id
	}

	mustInsert(db.EntryRow{Title: "Charlie", Category: "Work"})
	alphaID := mustInsert(db.EntryRow{Title: "Alpha", Favorite: true})
	bravoID := mustInsert(db.EntryRow{Title: "Bravo", Username: "someone"})
	require.NoError(t, db.SetDeleted(d, bravoID, true))

	all, err := db.ListEntries(d, db.ListFilter{}, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].Title, "listings are ordered by title")
	assert.Equal(t, "Charlie", all[1].Title)

	favorites, err := db.ListEntries(d, db.ListFilter{Favorites: true}, "")
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, alphaID, favorites[0].ID)

	trash, err := db.ListEntries(d, db.ListFilter{Trash: true}, "")
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.Equal(t, bravoID, trash[0].ID)

	work, err := db.ListEntries(d, db.ListFilter{Category: "Work"}, "")
	require.NoError(t, err)
	require.Len(t, work, 1)
	assert.Equal(t, "Charlie", work[0].Title)

	searched, err := db.ListEntries(d, db.ListFilter{}, "alph")
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "Alpha", searched[0].Title)
}

func TestSetFavorite(t *testing.T) {
	d := openTestDB(t)

	id, err := db.InsertEntry(d, db.EntryRow{Title: "Star"})
	require.NoError(t, err)

	require.NoError(t, db.SetFavorite(d, id, true))
	row, err := db.GetEntryByID(d, id)
	require.NoError(t, err)
	assert.True(t, row.Favorite)
}

func TestMasterAccountRows(t *testing.T) {
	d := openTestDB(t)

	n, err := db.CountMasterAccounts(d)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, db.InsertMasterAccount(d, db.MasterAccountRow{
		Username:     "alice",
		PasswordHash: "$argon2id$...",
		Salt:         "c2FsdA==",
	}))

	n, err = db.CountMasterAccounts(d)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	account, err := db.GetMasterAccount(d, "alice")
	require.NoError(t, err)
	assert.Equal(t, "c2FsdA==", account.Salt)
	assert.NotEmpty(t, account.CreatedAt)

	_, err = db.GetMasterAccount(d, "nobody")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCategoryExists(t *testing.T) {
	d := openTestDB(t)

	exists, err := db.CategoryExists(d, "Work")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, db.InsertCategory(d, db.CategoryRow{Name: "Work", Color: "#ff0000"}))

	exists, err = db.CategoryExists(d, "Work")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDeleteCategoryClearsReferences(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, db.InsertCategory(d, db.CategoryRow{Name: "Work", Color: "#ff0000"}))
	require.NoError(t, db.InsertCategory(d, db.CategoryRow{Name: "Home", Color: "#00ff00"}))

	id, err := db.InsertEntry(d, db.EntryRow{Title: "Office", Category: "Work"})
	require.NoError(t, err)

	categories, err := db.ListCategories(d)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Home", categories[0].Name, "categories are ordered by name")

	require.NoError(t, db.DeleteCategory(d, "Work"))

	categories, err = db.ListCategories(d)
	require.NoError(t, err)
	require.Len(t, categories, 1)

	row, err := db.GetEntryByID(d, id)
	require.NoError(t, err)
	assert.Empty(t, row.Category, "entry must survive with its category cleared")
}

func TestSettingsUpsert(t *testing.T) {
	d := openTestDB(t)

	value, err := db.GetSetting(d, "theme")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, db.SetSetting(d, "theme", "dark"))
	require.NoError(t, db.SetSetting(d, "theme", "light"))

	value, err = db.GetSetting(d, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", value)
}
