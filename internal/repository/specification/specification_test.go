package specification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type row struct {
	Id     string
	OrgId  string
	Status string
}

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost"}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func toSQL(db *gorm.DB, specs ...Specification) string {
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		for _, s := range specs {
			tx = s.Apply(tx)
		}
		var rows []row
		return tx.Table("support_sessions").Find(&rows)
	})
}

func TestSpecificationsComposeIntoSQL(t *testing.T) {
	db := dryRun(t)

	sql := toSQL(db,
		ByOrgID{OrgID: "acme"},
		ByStatus{Status: "open"},
		OrderBy{Field: "created_at", Desc: true},
		Pagination{Limit: 10},
	)

	assert.Contains(t, sql, `org_id = 'acme'`)
	assert.Contains(t, sql, `status = 'open'`)
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.Contains(t, sql, "LIMIT 10")
}

func TestEmptyFiltersAreNoOps(t *testing.T) {
	db := dryRun(t)

	sql := toSQL(db, ByOrgID{}, ByStatus{}, Pagination{})

	assert.NotContains(t, sql, "WHERE")
	assert.NotContains(t, sql, "LIMIT")
}
