package entity

// Migration stores the last applied migration version. The table has a
// single row.
type Migration struct {
	ID      int `gorm:"primarykey"`
	Version int
}
