package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jordanlanch/funneltrack/pkg/domain"
)

func TestValidateAge(t *testing.T) {
	tests := []struct {
		age  string
		want bool
	}{
		{"18", true},
		{"99", true},
		{"42", true},
		{" 30 ", true},
		{"17", false},
		{"100", false},
		{"", false},
		{"thirty", false},
		{"25.5", false},
		{"-20", false},
	}

	for _, tt := range tests {
		t.Run(tt.age, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateAge(tt.age))
		})
	}
}

func TestValidatePhoto(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		size        int64
		wantMsg     string
	}{
		{"jpeg", "image/jpeg", 1024, ""},
		{"jpg alias", "image/jpg", 1024, ""},
		{"png with params", "image/png; charset=binary", 1024, ""},
		{"webp upper case", "IMAGE/WEBP", 1024, ""},
		{"exactly the limit", "image/png", MaxPhotoSize, ""},
		{"too large", "image/png", MaxPhotoSize + 1, "File size must be less than 10MB"},
		{"gif", "image/gif", 1024, "Please upload a valid image file (JPG, PNG, or WebP)"},
		{"pdf", "application/pdf", 1024, "Please upload a valid image file (JPG, PNG, or WebP)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhoto(tt.contentType, tt.size)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, domain.IsValidation(err))
			assert.Equal(t, tt.wantMsg, domain.UserMessage(err))
		})
	}
}

func TestPhotoExtension(t *testing.T) {
	assert.Equal(t, ".jpg", PhotoExtension("image/jpeg"))
	assert.Equal(t, ".webp", PhotoExtension("image/webp"))
	assert.Empty(t, PhotoExtension("text/plain"))
}

func TestProgressPercentage(t *testing.T) {
	assert.Equal(t, 33, ProgressPercentage(1, 3))
	assert.Equal(t, 67, ProgressPercentage(2, 3))
	assert.Equal(t, 100, ProgressPercentage(3, 3))
	assert.Equal(t, 100, ProgressPercentage(5, 3))
	assert.Equal(t, 0, ProgressPercentage(0, 3))
	assert.Equal(t, 0, ProgressPercentage(1, 0))
}

func TestSteps(t *testing.T) {
	n, ok := StepNumber(QuestionLocation)
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = StepNumber("favourite_color")
	assert.False(t, ok)

	assert.Equal(t, QuestionPhoto, StepName(3))
	assert.Equal(t, QuestionName, StepName(0))
	assert.Equal(t, "unknown", StepName(7))
	assert.True(t, ValidQuestionType(QuestionAge))
	assert.False(t, ValidQuestionType(""))
}
