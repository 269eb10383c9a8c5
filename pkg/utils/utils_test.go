package utils

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmailFormat(t *testing.T) {
	assert.True(t, ValidateEmailFormat("alice@example.com"))
	assert.True(t, ValidateEmailFormat(""))
	assert.False(t, ValidateEmailFormat("alice@"))
	assert.False(t, ValidateEmailFormat("not an email"))
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in        string
		wantYear  int
		wantMonth time.Month
		wantErr   bool
	}{
		{in: "", wantYear: 2025, wantMonth: time.June},
		{in: "2024-02", wantYear: 2024, wantMonth: time.February},
		{in: "2024/3", wantYear: 2024, wantMonth: time.March},
		{in: "2024-13", wantErr: true},
		{in: "march", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			y, m, err := ParseMonth(tt.in, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMonthFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantYear, y)
			assert.Equal(t, tt.wantMonth, m)
		})
	}
}

func TestParseYear(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	y, err := ParseYear("", now)
	require.NoError(t, err)
	assert.Equal(t, 2025, y)

	_, err = ParseYear("20x5", now)
	assert.ErrorIs(t, err, ErrInvalidYear)
}

func TestFormatBindingError(t *testing.T) {
	type payload struct {
		Email string `json:"email" binding:"required,email"`
	}
	err := binding.Validator.ValidateStruct(&payload{Email: "nope"})
	require.Error(t, err)
	assert.Contains(t, FormatBindingError(err), "'email'")
	assert.Empty(t, FormatBindingError(nil))
}
