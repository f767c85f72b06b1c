package domain

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Args is the argument list of an executed command. On Postgres it is
// stored as text[]; other dialects keep the same array literal in a text
// column so the value round-trips identically.
type Args []string

// Value implements driver.Valuer. A nil list is stored as an empty array.
func (a Args) Value() (driver.Value, error) {
	if a == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(a).Value()
}

// Scan implements sql.Scanner.
func (a *Args) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	if arr == nil {
		arr = pq.StringArray{}
	}
	*a = Args(arr)
	return nil
}

// GormDataType implements schema.GormDataTypeInterface.
func (Args) GormDataType() string { return "text[]" }

// GormDBDataType picks the column type per dialect.
func (Args) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
