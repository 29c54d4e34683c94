package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		required bool
		wantErr  bool
	}{
		{"icon id", "icon-home", true, false},
		{"dotted", "icon.notes_v2", true, false},
		{"missing required", "", true, true},
		{"missing optional", "", false, false},
		{"spaces", "icon home", true, true},
		{"slash", "../etc", true, true},
		{"too long", strings.Repeat("a", MaxIDLength+1), true, true},
		{"null byte", "icon\x00", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id, "id", tt.required)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTitleAndImage(t *testing.T) {
	assert.NoError(t, ValidateTitle(""))
	assert.NoError(t, ValidateTitle("Documents"))
	assert.Error(t, ValidateTitle(strings.Repeat("é", MaxTitleLength+1)))

	assert.NoError(t, ValidateImage("/assets/icons/home.svg"))
	assert.Error(t, ValidateImage("/assets/icons/my home.svg"))
}

func TestHash(t *testing.T) {
	assert.Equal(t, "26c7827d889f6da3", Hash([]byte("hello")))
	assert.Equal(t, Hash([]byte("hello")), Hash([]byte("hello")))
	assert.NotEqual(t, Hash([]byte("hello")), Hash([]byte("world")))

	assert.Equal(t, `"26c7827d889f6da3"`, ETag([]byte("hello")))
}
