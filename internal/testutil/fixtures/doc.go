// Package fixtures seeds workspaces with works and scenarios for tests.
//
// # Basic Usage
//
// The simplest way to set up a test with data:
//
//	func TestMyFeature(t *testing.T) {
//		db := testutil.SetupTestDBWithBuilder(t, func(b fixtures.Builder) fixtures.Builder {
//			return b.WithWork("drill", "KR_WALLS", "Drilling", 1500)
//		})
//
//		// Use db.Workspace for your test...
//	}
//
// # Using Fixtures
//
// Fixtures provide consistent data sets:
//
//	db := testutil.SetupTestDB(t, fixtures.FixtureCellRange)
//	drill := db.Data.MustWork(t, "drill")
package fixtures
