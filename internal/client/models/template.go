package models

import (
	"fmt"
	"strings"
)

type TemplateCategory string

const (
	CategoryContract    TemplateCategory = "contract"
	CategoryLegal       TemplateCategory = "legal"
	CategoryApplication TemplateCategory = "application"
	CategoryReport      TemplateCategory = "report"
	CategoryOther       TemplateCategory = "other"
)

var TemplateCategories = []TemplateCategory{
	CategoryContract, CategoryLegal, CategoryApplication, CategoryReport, CategoryOther,
}

func ParseTemplateCategory(s string) (TemplateCategory, error) {
	c := TemplateCategory(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range TemplateCategories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown template category %q", s)
}

// Template is a reusable document owned by one user.
type Template struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    TemplateCategory `json:"category"`
	Description string           `json:"description,omitempty"`
	FileURL     string           `json:"file_url,omitempty"`
	OwnerUserID string           `json:"user_id,omitempty"`
}
