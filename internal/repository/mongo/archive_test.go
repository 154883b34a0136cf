package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/health-insights/internal/config"
	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/security"
)

func TestArchive_SaveListLoad(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set - run as integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	enc, err := security.NewEncryptorFromSecret("archive-test-secret")
	require.NoError(t, err)

	archive, err := NewArchive(ctx, config.ArchiveConfig{
		MongoURI:   uri,
		Database:   "insights_test",
		Collection: "archive_" + uuid.NewString()[:8],
	}, enc)
	require.NoError(t, err)
	t.Cleanup(func() {
		archive.coll.Drop(context.Background())
		archive.Close(context.Background())
	})

	userID := uuid.New()
	records := []domain.AnalysisRecord{
		{UserID: userID, PatientName: "Jane", Age: 42, Gender: "Female", ReportType: domain.SampleReportType,
			Analysis: domain.AnalysisSections{WhatIsGood: "HDL normal", BeAlert: "Low platelets"}},
	}

	entry, err := archive.Save(ctx, userID, records)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.RecordCount)

	entries, err := archive.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)

	loaded, err := archive.Load(ctx, userID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, records[0].Analysis, loaded[0].Analysis)

	_, err = archive.Load(ctx, uuid.New(), entry.ID)
	assert.ErrorIs(t, err, ErrArchiveNotFound)
	_, err = archive.Load(ctx, userID, "not-an-id")
	assert.ErrorIs(t, err, ErrArchiveNotFound)
}
