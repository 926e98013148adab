package auth_repo

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"stockpro/internal/domain/auth"
)

// The repo scans users positionally, so its column list must cover
// exactly the persisted fields of auth.User.
func TestUserColumnsMatchModel(t *testing.T) {
	modelCols := make(map[string]bool)
	ut := reflect.TypeOf(auth.User{})
	for i := 0; i < ut.NumField(); i++ {
		tag := ut.Field(i).Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		modelCols[tag] = true
	}

	for _, col := range userColumns {
		assert.True(t, modelCols[col], "repo selects %q but auth.User has no such db tag", col)
	}

	assert.Len(t, userColumns, len(modelCols),
		"repo column list and auth.User persisted fields are out of sync")
}

func TestUserSelectUsesSoftDeleteColumn(t *testing.T) {
	q := userSelect()
	assert.Contains(t, q, "deleted_at")
	assert.NotContains(t, q, "deletion_mark")
	assert.NotContains(t, q, "attributes")
}
