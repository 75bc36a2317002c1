package util

// InSlice checks if an element is in the slice (generic version)
// InSlice 检查元素是否在切片中（泛型版本）
func InSlice[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}
