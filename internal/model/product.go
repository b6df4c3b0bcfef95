package model

import (
	"time"
)

// Product 商品主表
type Product struct {
	ID          uint64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string   `gorm:"type:varchar(120);not null" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
	Price       float64  `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string   `gorm:"type:varchar(50);index" json:"category"`
	Sizes       []string `gorm:"serializer:json;type:varchar(255)" json:"sizes"`
	Colors      []string `gorm:"serializer:json;type:varchar(255)" json:"colors"`
	Images      []string `gorm:"serializer:json;type:text" json:"images"`
	Stock       int      `gorm:"not null;default:0" json:"stock"`
	Featured    bool     `gorm:"type:tinyint(1);default:0;index" json:"featured"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }
