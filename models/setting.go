package models

// Setting is a process-wide name/value pair.
type Setting struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"uniqueIndex;not null"`
	Value string `json:"value" gorm:"not null"`
}

// SettingTableCount is the only setting key currently in use.
const SettingTableCount = "table_count"

// DefaultTableCount is persisted on first read when no row exists yet.
const DefaultTableCount = 20
