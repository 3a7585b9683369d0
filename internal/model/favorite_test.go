package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidItemType(t *testing.T) {
	for _, s := range []string{ItemTypeSermon, ItemTypeEvent, ItemTypeBlog, ItemTypeMinistry} {
		assert.True(t, ValidItemType(s), s)
	}
	assert.False(t, ValidItemType(""))
	assert.False(t, ValidItemType("podcast"))
	assert.False(t, ValidItemType("Sermon")) // case matters, handlers lowercase first
}
