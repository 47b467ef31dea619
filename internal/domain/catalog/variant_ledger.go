package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopline/backend/internal/domain/shared"
)

// LedgerEventType represents the kind of variant lifecycle event being recorded
type LedgerEventType string

const (
	LedgerEventCreateVariant       LedgerEventType = "CREATE_VARIANT"
	LedgerEventAddStock            LedgerEventType = "ADD_STOCK"
	LedgerEventEditStock           LedgerEventType = "EDIT_STOCK"
	LedgerEventDeleteVariant       LedgerEventType = "DELETE_VARIANT"
	LedgerEventUpdatePriceSnapshot LedgerEventType = "UPDATE_PRICE_SNAPSHOT"
)

// String returns the string representation of LedgerEventType
func (t LedgerEventType) String() string {
	return string(t)
}

// IsValid returns true if the event type is valid
func (t LedgerEventType) IsValid() bool {
	switch t {
	case LedgerEventCreateVariant,
		LedgerEventAddStock,
		LedgerEventEditStock,
		LedgerEventDeleteVariant,
		LedgerEventUpdatePriceSnapshot:
		return true
	}
	return false
}

// LedgerStatus reflects whether the variant referenced by an entry still exists
type LedgerStatus string

const (
	LedgerStatusActive  LedgerStatus = "ACTIVE"
	LedgerStatusDeleted LedgerStatus = "DELETED"
)

// VariantLedgerEntry is an immutable record of a variant-level stock or
// lifecycle event. Size label and color name are denormalized on purpose so
// history stays readable after the referenced catalog rows are deleted.
// Entries are never updated or deleted - corrections take new entries.
type VariantLedgerEntry struct {
	shared.BaseEntity
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_product_time,priority:1"`
	SizeID        uuid.UUID       `gorm:"type:uuid;not null"`
	ColorID       uuid.UUID       `gorm:"type:uuid;not null"`
	SizeLabel     string          `gorm:"type:varchar(50)"`
	ColorName     string          `gorm:"type:varchar(50)"`
	VariantKey    string          `gorm:"type:varchar(80);not null;index"`
	EventType     LedgerEventType `gorm:"type:varchar(30);not null"`
	Status        LedgerStatus    `gorm:"type:varchar(10);not null"`
	PrevStock     int             `gorm:"not null"`
	NewStock      int             `gorm:"not null"`
	PriceSnapshot decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Note          string          `gorm:"type:varchar(255)"`
	Actor         string          `gorm:"type:varchar(100)"`
	RecordedAt    time.Time       `gorm:"type:timestamptz;not null;index:idx_ledger_product_time,priority:2"`
}

// TableName returns the table name for GORM
func (VariantLedgerEntry) TableName() string {
	return "variant_ledger_entries"
}

// NewVariantLedgerEntry creates a new ledger entry for a variant event
func NewVariantLedgerEntry(
	productID uuid.UUID,
	variant *Variant,
	eventType LedgerEventType,
	prevStock, newStock int,
	priceSnapshot decimal.Decimal,
) (*VariantLedgerEntry, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if variant == nil {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Variant is required")
	}
	if !eventType.IsValid() {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", "Invalid ledger event type")
	}

	status := LedgerStatusActive
	if eventType == LedgerEventDeleteVariant {
		status = LedgerStatusDeleted
	}

	return &VariantLedgerEntry{
		BaseEntity:    shared.NewBaseEntity(),
		ProductID:     productID,
		SizeID:        variant.SizeID,
		ColorID:       variant.ColorID,
		SizeLabel:     variant.SizeLabel,
		ColorName:     variant.ColorName,
		VariantKey:    variant.Key(),
		EventType:     eventType,
		Status:        status,
		PrevStock:     prevStock,
		NewStock:      newStock,
		PriceSnapshot: priceSnapshot,
		RecordedAt:    time.Now(),
	}, nil
}

// WithNote attaches a free-form note to the entry
func (e *VariantLedgerEntry) WithNote(note string) *VariantLedgerEntry {
	e.Note = note
	return e
}

// WithActor records who performed the operation
func (e *VariantLedgerEntry) WithActor(actor string) *VariantLedgerEntry {
	e.Actor = actor
	return e
}

// StockChange returns the net stock change recorded by the entry
func (e *VariantLedgerEntry) StockChange() int {
	return e.NewStock - e.PrevStock
}
