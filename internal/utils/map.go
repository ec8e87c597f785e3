package utils

// MergeMissing copies the entries of src whose key is not in dst yet.
func MergeMissing[K comparable, V any](dst, src map[K]V) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}
