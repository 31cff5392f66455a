package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/clash-cost/internal/model"
	"github.com/Veraticus/clash-cost/internal/storage"
	"github.com/Veraticus/clash-cost/internal/testutil/fixtures"
	"github.com/Veraticus/clash-cost/internal/workspace"
)

func TestSetupTestDB(t *testing.T) {
	db := SetupTestDB(t, fixtures.FixtureCellRange)

	assert.Len(t, db.Workspace.Works(), 2)
	assert.Equal(t, "Core drill", db.Data.MustScenario(t, "s1").Name)

	version, err := db.Storage.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, storage.ExpectedSchemaVersion, version)

	reopened := db.Reopen()
	assert.Equal(t, db.Workspace.Works(), reopened.Works())
	assert.Equal(t, db.Workspace.Scenarios(), reopened.Scenarios())
}

func TestSetupTestDBWithBuilder(t *testing.T) {
	db := SetupTestDBWithBuilder(t, func(b fixtures.Builder) fixtures.Builder {
		return b.WithFixture(fixtures.FixtureReview).WithWork("pipe", "VK_K", "Pipe", 30)
	})

	assert.Len(t, db.Data.Works, 4)
	assert.True(t, db.Reopen().HasWorks("VK_K"))
}

func TestSetupTestDBWithOptions_CustomSetup(t *testing.T) {
	db := SetupTestDBWithOptions(t, TestDBOptions{
		CustomSetup: func(ctx context.Context, s *storage.SQLiteStorage) error {
			return s.Save(ctx, workspace.WorksKey, []byte(`[{"id":"raw","categoryId":"EOM","name":"Raw","price":5}]`))
		},
		Configure: func(b fixtures.Builder) fixtures.Builder {
			return b.WithScenario("s", model.MatrixKey{Row: "EOM", Col: "VK_K"}, "Uses raw")
		},
	})

	_, ok := db.Workspace.Work("raw")
	assert.True(t, ok)
	assert.Len(t, db.Data.Scenarios, 1)
}
