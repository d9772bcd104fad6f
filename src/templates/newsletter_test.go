package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmailConfig(t *testing.T) {
	config, err := LoadEmailConfig()
	require.NoError(t, err)

	assert.Equal(t, "GameHost", config.Branding.Name)
	assert.NotEmpty(t, config.Branding.Website)
	assert.NotEmpty(t, config.Newsletter.UnsubscribePath)
}

func TestRenderNewsletterText(t *testing.T) {
	out, err := RenderNewsletterText("New servers in Frankfurt.\n\n", "player+eu@example.com")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "New servers in Frankfurt.\n\n--\n"), out)
	assert.Contains(t, out, "The GameHost team")
	assert.Contains(t, out, "https://gamehost.example.com/newsletter/unsubscribe?email=player%2Beu%40example.com")
}
