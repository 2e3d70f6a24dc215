package database

import (
	"context"
	"testing"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := createUser(t, db, "Ann", "ann@example.com")
	assert.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", got.Email)

	got.Name = "Anna"
	require.NoError(t, db.UpdateUser(ctx, got))

	got, err = db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.Name)

	createUser(t, db, "Bob", "bob@example.com")
	all, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, u.ID, all[0].ID)

	require.NoError(t, db.DeleteUser(ctx, u.ID))
	_, err = db.GetUserByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.DeleteUser(ctx, u.ID), ErrNotFound)
}

func TestUser_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createUser(t, db, "Ann", "ann@example.com")
	bob := createUser(t, db, "Bob", "bob@example.com")

	err := db.CreateUser(ctx, &models.User{Name: "Ann Again", Email: "ann@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	bob.Email = "ann@example.com"
	assert.ErrorIs(t, db.UpdateUser(ctx, bob), ErrDuplicateEmail)
}

func TestUser_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createUser(t, db, "Owner", "owner@example.com")
	item := createItem(t, db, owner.ID, "Drill", true)

	require.NoError(t, db.DeleteUser(ctx, owner.ID))

	_, err := db.GetItemByID(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
