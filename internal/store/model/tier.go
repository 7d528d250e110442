package model

import "github.com/thoas/go-funk"

// DefaultModelTier is the smallest tier, used when a submission names none.
const DefaultModelTier = "tiny"

// ModelTiers are the model sizes the worker can load, smallest first.
var ModelTiers = []string{"tiny", "base", "small", "medium", "large", "large-v2", "large-v3"}

func IsModelTier(tier string) bool {
	return funk.ContainsString(ModelTiers, tier)
}
