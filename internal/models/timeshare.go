package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TimeshareContract struct {
	gorm.Model
	ContractNumber       string          `json:"contract_number" gorm:"uniqueIndex;not null"`
	UserID               uint            `json:"user_id" gorm:"index:idx_contract_owner"`
	User                 User            `json:"-" gorm:"foreignKey:UserID"`
	HouseID              uint            `json:"house_id" gorm:"index:idx_contract_owner"`
	House                House           `json:"-" gorm:"foreignKey:HouseID"`
	Period               string          `json:"period" gorm:"type:varchar(16);index:idx_contract_owner"`
	DurationWeeks        int             `json:"duration_weeks"`
	PurchasePrice        decimal.Decimal `json:"purchase_price" gorm:"type:decimal(12,2)"`
	AnnualMaintenanceFee decimal.Decimal `json:"annual_maintenance_fee" gorm:"type:decimal(10,2)"`
	ContractDate         time.Time       `json:"contract_date" gorm:"type:date"`
	EffectiveFrom        time.Time       `json:"effective_from" gorm:"type:date"`
	ValidUntil           time.Time       `json:"valid_until" gorm:"type:date"`
	Status               string          `json:"status" gorm:"type:varchar(16)"`
	TermsConditions      string          `json:"terms_conditions"`
}

type TimeshareOwnership struct {
	gorm.Model
	UserID              uint            `json:"user_id" gorm:"index"`
	HouseID             uint            `json:"house_id" gorm:"index"`
	ContractID          uint            `json:"contract_id" gorm:"uniqueIndex"`
	OwnershipPercentage decimal.Decimal `json:"ownership_percentage" gorm:"type:decimal(5,2)"`
}
