package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "Cake", expected: "cake"},
		{input: "BakedOn", expected: "baked_on"},
		{input: "HTTPServer", expected: "http_server"},
		{input: "DefaultID", expected: "default_id"},
		{input: "UserV2", expected: "user_v2"},
		{input: "ID", expected: "id"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToSnakeCase(tt.input))
		})
	}
}

func TestUnquoteTag(t *testing.T) {
	assert.Equal(t, `json:"id" gorm:"primaryKey"`, UnquoteTag("`json:\"id\" gorm:\"primaryKey\"`"))
	assert.Equal(t, `json:"id"`, UnquoteTag(`"json:\"id\""`))
	assert.Equal(t, "", UnquoteTag(""))
}

func TestRemoveQuotes(t *testing.T) {
	assert.Equal(t, "gorm.io/gorm", RemoveQuotes(`"gorm.io/gorm"`))
	assert.Equal(t, "x", RemoveQuotes("x"))
}
