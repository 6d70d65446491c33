package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "DESC"},
		{"ASC", "ASC"},
		{"asc", "ASC"},
		{"desc", "DESC"},
		{"INVALID", "DESC"},
		{"ASC; DROP TABLE sell_histories;--", "DESC"},
		{"  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "created_at"},
		{"valid field returns field", "revenue", "revenue"},
		{"unknown field returns default", "deleted_at", "created_at"},
		{"sql injection attempt returns default", "id; DROP TABLE products;--", "created_at"},
		{"case sensitive", "NAME", "created_at"},
		{"whitespace around valid field", "  quantity  ", "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, ProductSortFields, "created_at"))
		})
	}
}

func TestSortFieldsWhitelists(t *testing.T) {
	whitelists := map[string]map[string]bool{
		"CommonSortFields":      CommonSortFields,
		"CategorySortFields":    CategorySortFields,
		"ProductSortFields":     ProductSortFields,
		"ServiceSortFields":     ServiceSortFields,
		"SellHistorySortFields": SellHistorySortFields,
		"TransactionSortFields": TransactionSortFields,
		"DebitSortFields":       DebitSortFields,
		"ExpenseSortFields":     ExpenseSortFields,
	}

	for name, fields := range whitelists {
		t.Run(name, func(t *testing.T) {
			for _, f := range []string{"id", "created_at", "updated_at"} {
				assert.True(t, fields[f], "%s should allow %s", name, f)
			}
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%sugar%", likePattern("  Sugar "))
}
