package template

// MergeContexts merges template data maps into a new map. Keys in later maps
// override earlier ones; nil maps are skipped.
func MergeContexts(contexts ...map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, ctx := range contexts {
		for key, value := range ctx {
			result[key] = value
		}
	}
	return result
}
