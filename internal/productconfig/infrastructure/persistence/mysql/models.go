package mysql

import (
	"encoding/json"
	"time"

	"github.com/wyfcoding/insurancerating/internal/productconfig/domain"
	rating "github.com/wyfcoding/insurancerating/internal/rating/domain"
)

// ProductConfigModel MySQL 产品配置版本表映射。
// 各分区以 JSON 列存储，(insurer_id, product_code, version) 唯一约束
// 保证版本只增不改。
type ProductConfigModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	InsurerID   string `gorm:"column:insurer_id;type:varchar(64);not null;uniqueIndex:uk_product_version,priority:1"`
	ProductCode string `gorm:"column:product_code;type:varchar(64);not null;uniqueIndex:uk_product_version,priority:2"`
	Version     uint64 `gorm:"column:version;type:bigint unsigned;not null;uniqueIndex:uk_product_version,priority:3"`

	Base           string `gorm:"column:base;type:json"`
	DimensionOrder string `gorm:"column:dimension_order;type:json"`
	RateTables     string `gorm:"column:rate_tables;type:json"`
	Clauses        string `gorm:"column:clauses;type:json"`
	Fees           string `gorm:"column:fees;type:json"`
	Limits         string `gorm:"column:limits;type:json"`
}

func (ProductConfigModel) TableName() string { return "product_config_versions" }

// mapping helpers

func toConfigModel(c *domain.ProductConfig) (*ProductConfigModel, error) {
	if c == nil {
		return nil, nil
	}

	base, err := json.Marshal(c.Base)
	if err != nil {
		return nil, err
	}
	order, err := json.Marshal(c.DimensionOrder)
	if err != nil {
		return nil, err
	}
	tables, err := json.Marshal(c.RateTables)
	if err != nil {
		return nil, err
	}
	clauses, err := json.Marshal(c.Clauses)
	if err != nil {
		return nil, err
	}
	fees, err := json.Marshal(c.Fees)
	if err != nil {
		return nil, err
	}
	limits, err := json.Marshal(c.Limits)
	if err != nil {
		return nil, err
	}

	return &ProductConfigModel{
		ID:             c.ID,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		InsurerID:      c.InsurerID,
		ProductCode:    c.ProductCode,
		Version:        c.Version,
		Base:           string(base),
		DimensionOrder: string(order),
		RateTables:     string(tables),
		Clauses:        string(clauses),
		Fees:           string(fees),
		Limits:         string(limits),
	}, nil
}

func toConfig(m *ProductConfigModel) (*domain.ProductConfig, error) {
	if m == nil {
		return nil, nil
	}

	c := &domain.ProductConfig{
		ID:          m.ID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		InsurerID:   m.InsurerID,
		ProductCode: m.ProductCode,
		Version:     m.Version,
		RateTables:  make(map[rating.Dimension]rating.RateTable),
	}

	if m.Base != "" {
		if err := json.Unmarshal([]byte(m.Base), &c.Base); err != nil {
			return nil, err
		}
	}
	if m.DimensionOrder != "" {
		if err := json.Unmarshal([]byte(m.DimensionOrder), &c.DimensionOrder); err != nil {
			return nil, err
		}
	}
	if m.RateTables != "" {
		if err := json.Unmarshal([]byte(m.RateTables), &c.RateTables); err != nil {
			return nil, err
		}
	}
	if m.Clauses != "" {
		if err := json.Unmarshal([]byte(m.Clauses), &c.Clauses); err != nil {
			return nil, err
		}
	}
	if m.Fees != "" {
		if err := json.Unmarshal([]byte(m.Fees), &c.Fees); err != nil {
			return nil, err
		}
	}
	if m.Limits != "" {
		if err := json.Unmarshal([]byte(m.Limits), &c.Limits); err != nil {
			return nil, err
		}
	}

	return c, nil
}
