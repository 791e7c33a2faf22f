package crm

import "time"

// The CRM owns these tables; this service only reads them. Migrate exists for
// local development and tests.

type Agent struct {
	ID   string `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

// DealStatus is the status dictionary shared by properties and leads.
type DealStatus struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Code string `gorm:"uniqueIndex;not null"`
	Name string `gorm:"not null"`
}

type Property struct {
	ID           string     `gorm:"primaryKey"`
	Title        string     `gorm:"not null"`
	Price        float64    `gorm:"not null"`
	StatusID     *uint      `gorm:"index"`
	OwnerAgentID string     `gorm:"index"`
	CreatedBy    string     `gorm:"index"`
	ClosedDate   *time.Time `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Lead struct {
	ID         string `gorm:"primaryKey"`
	AgentID    string `gorm:"index"`
	Source     string
	LeadDate   time.Time `gorm:"index"`
	Price      float64
	StatusID   *uint
	ClosedDate *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Viewing struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	AgentID     string `gorm:"index"`
	PropertyID  string
	ViewingDate time.Time `gorm:"index"`
}
