package api_test

import (
	"testing"

	"github.com/livingtrust/livingtrust/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := api.Load()
	require.NoError(t, err)
	assert.Equal(t, "Living Trust API", doc.Info.Title)
	assert.NotNil(t, doc.Paths.Find("/api/wizard/sessions/{id}/confirm"))
	assert.NotEmpty(t, api.Raw())
}
