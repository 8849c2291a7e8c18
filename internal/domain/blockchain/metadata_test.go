package blockchain

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hauntpass/backend/internal/model"
	"github.com/stretchr/testify/require"
)

func Test_BuildMetadataURI(t *testing.T) {
	uri, err := BuildMetadataURI(model.NFTMetadata{
		Name:        "Lighthouse Ghost",
		Description: "Met the ghost",
		Image:       "https://example.com/ghost.png",
		Attributes: []model.NFTAttribute{
			{TraitType: "Location", Value: "Lighthouse"},
			{TraitType: "Level", Value: 3},
		},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:application/json;base64,"))

	b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:application/json;base64,"))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	require.Equal(t, "Lighthouse Ghost", doc["name"])
	require.Equal(t, "Met the ghost", doc["description"])
	require.Equal(t, "https://example.com/ghost.png", doc["image"])
	require.Equal(t, []any{
		map[string]any{"trait_type": "Location", "value": "Lighthouse"},
		map[string]any{"trait_type": "Level", "value": float64(3)},
	}, doc["attributes"])
}

func Test_BuildMetadataURI_EmptyAttributes(t *testing.T) {
	uri, err := BuildMetadataURI(model.NFTMetadata{Name: "x"})
	require.NoError(t, err)

	b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:application/json;base64,"))
	require.NoError(t, err)
	require.Contains(t, string(b), `"attributes":[]`)
}
