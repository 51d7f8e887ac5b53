package storage

import (
	"fmt"
	"path"
	"strings"
)

// PhotoKey 生成头像对象键：user-assets/{userID}/{name}.{ext}。
func PhotoKey(userID uint, name, ext string) string {
	return fmt.Sprintf("user-assets/%d/%s.%s", userID, name, strings.TrimPrefix(ext, "."))
}

// ExportPrefix 是某份简历所有归档 PDF 的公共前缀。
func ExportPrefix(userID, profileID uint) string {
	return fmt.Sprintf("exports/%d/%d/", userID, profileID)
}

// ExportKey 生成归档 PDF 的对象键。
func ExportKey(userID, profileID uint, fileName string) string {
	return ExportPrefix(userID, profileID) + path.Base(fileName)
}

// OwnsKey 判断 key 是否位于该用户的前缀之下。
func OwnsKey(userID uint, key string) bool {
	if strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(key, fmt.Sprintf("user-assets/%d/", userID)) ||
		strings.HasPrefix(key, fmt.Sprintf("exports/%d/", userID))
}
