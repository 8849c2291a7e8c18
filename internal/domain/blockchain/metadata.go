package blockchain

import (
	"encoding/base64"
	"encoding/json"

	"github.com/hauntpass/backend/internal/model"
)

const metadataURIPrefix = "data:application/json;base64,"

// BuildMetadataURI embeds the metadata into a self-contained data URI, so the
// mint does not depend on external metadata hosting.
func BuildMetadataURI(metadata model.NFTMetadata) (string, error) {
	if metadata.Attributes == nil {
		metadata.Attributes = []model.NFTAttribute{}
	}

	b, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}

	return metadataURIPrefix + base64.StdEncoding.EncodeToString(b), nil
}
