package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hi @\u200beveryone and @\u200bhere", Sanitize("  hi @everyone and @here \n"))
	assert.Equal(t, "", Sanitize("   "))
}

func TestStripMentions(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain mention", "<@123> hello", "hello"},
		{"nickname mention", "<@!123>   hello", "hello"},
		{"mention in the middle", "hey <@123> you", "hey you"},
		{"other user untouched", "<@456> hello", "<@456> hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMentions(tt.text, "123"))
		})
	}

	assert.Equal(t, "<@123> hi", StripMentions(" <@123> hi ", ""))
}

func TestNormalizeContent(t *testing.T) {
	assert.Equal(t, "hello", NormalizeContent(" hello ", 1, 1))
	assert.Equal(t, AttachmentPlaceholder, NormalizeContent("", 2, 1))
	assert.Equal(t, StickerPlaceholder, NormalizeContent("  ", 0, 1))
	assert.Equal(t, EmptyPlaceholder, NormalizeContent("", 0, 0))
}
