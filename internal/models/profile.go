package models

import (
	"time"

	"gorm.io/gorm"
)

// Company holds per-account company settings including the CMS connection.
// The application password is stored encrypted; only the credential resolver
// can turn it into plaintext.
type Company struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	AccountID         uint           `gorm:"not null;index" json:"account_id"`
	CompanyName       string         `gorm:"not null;size:255" json:"company_name"`
	BrandName         string         `gorm:"size:255" json:"brand_name"`
	AboutText         string         `gorm:"type:text" json:"about_text"`
	SiteURL           string         `gorm:"size:500" json:"site_url"`
	CMSBaseURL        string         `gorm:"not null;size:500" json:"cms_base_url"`
	CMSUsername       string         `gorm:"not null;size:255" json:"cms_username"`
	CMSAppPasswordEnc string         `gorm:"not null;size:500" json:"-"`
	CMSDefaultStatus  string         `gorm:"size:50;default:'draft'" json:"cms_default_status"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// Profile is a configured posting destination/strategy owned by an account.
// Created and edited by the management layer; read-only to the pipeline.
type Profile struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	AccountID       uint            `gorm:"not null;index" json:"account_id"`
	CompanyID       uint            `gorm:"not null;index" json:"company_id"`
	Name            string          `gorm:"not null;size:255" json:"name"`
	Description     string          `gorm:"type:text" json:"description"`
	KeywordStrategy KeywordStrategy `gorm:"type:jsonb" json:"keyword_strategy"`
	CMSCategoryID   *int            `json:"cms_category_id"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"deleted_at"`

	Company      Company       `gorm:"foreignKey:CompanyID" json:"company"`
	ContentTypes []ContentType `gorm:"foreignKey:ProfileID" json:"content_types"`
}

// ContentType is a reusable prompt template bound to a Profile. Only enabled
// content types are eligible for scheduled generation.
type ContentType struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ProfileID      uint           `gorm:"not null;index" json:"profile_id"`
	Name           string         `gorm:"not null;size:255" json:"name"`
	PromptTemplate string         `gorm:"type:text;not null" json:"prompt_template"`
	Enabled        bool           `gorm:"default:true" json:"enabled"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}
