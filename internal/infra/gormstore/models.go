package gormstore

import "time"

// UUIDs are stored as their canonical string so the same models serve sqlite
// and MySQL.

type tableModel struct {
	ID                   string   `gorm:"primaryKey;size:36"`
	Number               int      `gorm:"uniqueIndex;not null"`
	Capacity             int      `gorm:"not null"`
	Location             string   `gorm:"size:100;not null;default:main"`
	Status               string   `gorm:"size:20;not null;default:available;index"`
	CurrentReservationID *string  `gorm:"size:36"`
	Features             []string `gorm:"serializer:json;type:text"`
	MinDurationMinutes   int      `gorm:"not null"`
	MaxDurationMinutes   int      `gorm:"not null"`
	CreatedAt            time.Time
}

func (tableModel) TableName() string { return "venue_tables" }

type customerModel struct {
	ID         string   `gorm:"primaryKey;size:36"`
	Name       string   `gorm:"size:255;not null"`
	Phone      string   `gorm:"size:32;not null;uniqueIndex"`
	Email      *string  `gorm:"size:255"`
	ExternalID *string  `gorm:"size:64;index"`
	VisitCount int      `gorm:"not null;default:0"`
	Notes      []string `gorm:"serializer:json;type:text"`
	CreatedAt  time.Time
}

func (customerModel) TableName() string { return "customers" }

type reservationModel struct {
	ID                 string         `gorm:"primaryKey;size:36"`
	CustomerID         string         `gorm:"size:36;not null;index"`
	Customer           *customerModel `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	TableID            *string        `gorm:"size:36;index:idx_reservations_table_window,priority:1"`
	Table              *tableModel    `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	StartTime          time.Time      `gorm:"not null;index;index:idx_reservations_table_window,priority:2"`
	EndTime            time.Time      `gorm:"not null"`
	PartySize          int            `gorm:"not null"`
	Status             string         `gorm:"size:20;not null;default:pending;index"`
	SpecialRequests    []string       `gorm:"serializer:json;type:text"`
	Source             string         `gorm:"size:20;not null;default:bot"`
	CreatedAt          time.Time
	ConfirmedAt        *time.Time
	SeatedAt           *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	NoShowAt           *time.Time
	CancellationReason *string `gorm:"size:500"`
}

func (reservationModel) TableName() string { return "reservations" }

func allModels() []any {
	return []any{&tableModel{}, &customerModel{}, &reservationModel{}}
}
