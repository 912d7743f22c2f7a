package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kirkidoo/Qualipieces/internal/models"
)

func TestConnectionRepositoryGetReturnsNilWhenEmpty(t *testing.T) {
	repo := NewConnectionRepository(testDB(t))

	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestConnectionRepositorySaveKeepsSingleRow(t *testing.T) {
	repo := NewConnectionRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.ConnectionSettings{
		OrchestraIdentityURL: "https://erp.example.com/Identity/connect/token",
		OrchestraBaseURL:     "https://erp.example.com/Api",
		OrchestraClientID:    "client-a",
		ShopifyStoreURL:      "https://store-a.myshopify.com",
	}))

	first, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)

	// A second save updates the same row instead of adding another.
	require.NoError(t, repo.Save(ctx, &models.ConnectionSettings{
		OrchestraIdentityURL: "https://erp.example.com/Identity/connect/token",
		OrchestraBaseURL:     "https://erp.example.com/Api",
		OrchestraClientID:    "client-b",
		ShopifyStoreURL:      "https://store-b.myshopify.com",
	}))

	second, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "client-b", second.OrchestraClientID)
	assert.Equal(t, "https://store-b.myshopify.com", second.ShopifyStoreURL)

	var count int64
	require.NoError(t, repo.db.Model(&models.ConnectionSettings{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestConnectionRepositorySavePreservesEncryptedColumns(t *testing.T) {
	repo := NewConnectionRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.ConnectionSettings{
		OrchestraIdentityURL: "https://erp.example.com/Identity/connect/token",
		OrchestraBaseURL:     "https://erp.example.com/Api",
		OrchestraClientID:    "client-a",
		OrchestraSecretEnc:   "enc:secret",
		ShopifyStoreURL:      "https://store-a.myshopify.com",
		ShopifyTokenEnc:      "enc:token",
	}))

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "enc:secret", stored.OrchestraSecretEnc)
	assert.Equal(t, "enc:token", stored.ShopifyTokenEnc)
}
