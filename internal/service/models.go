package service

import "github.com/liliang-cn/chatspark/internal/domain"

// ModelCatalog is the read-only list of completion models the widget can
// select from. It only populates the selector; core logic never consults it.
type ModelCatalog struct {
	models    []domain.ModelInfo
	defaultID string
}

// NewModelCatalog creates a catalog with the built-in model list.
func NewModelCatalog(defaultID string) *ModelCatalog {
	return &ModelCatalog{
		defaultID: defaultID,
		models: []domain.ModelInfo{
			{
				ID:              "gpt-4o-mini",
				Name:            "GPT-4o mini",
				Description:     "Fast and affordable, good for everyday chat",
				CostPer1KTokens: 0.00015,
			},
			{
				ID:              "gpt-4o",
				Name:            "GPT-4o",
				Description:     "Strongest reasoning and coding quality",
				CostPer1KTokens: 0.0025,
			},
			{
				ID:              "gpt-4-turbo",
				Name:            "GPT-4 Turbo",
				Description:     "Previous generation flagship",
				CostPer1KTokens: 0.01,
			},
			{
				ID:              "gpt-3.5-turbo",
				Name:            "GPT-3.5 Turbo",
				Description:     "Cheapest option for simple requests",
				CostPer1KTokens: 0.0005,
			},
		},
	}
}

// List returns a copy of the available models.
func (c *ModelCatalog) List() []domain.ModelInfo {
	out := make([]domain.ModelInfo, len(c.models))
	copy(out, c.models)
	return out
}

// DefaultID returns the configured default model identifier.
func (c *ModelCatalog) DefaultID() string {
	return c.defaultID
}
