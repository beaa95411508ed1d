package utils

import "strings"

// 图片地址工具：库里存相对路径（/uploads/xxx.jpg），对外返回完整 URL。
// baseURL 来自配置；没配时由调用方传请求推导出来的地址。

func IsFullURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// ImageURL 由文件名拼完整地址
func ImageURL(baseURL, filename string) string {
	return strings.TrimRight(baseURL, "/") + "/uploads/" + filename
}

// ExtractFilename 从完整地址里取回文件名
func ExtractFilename(imageURL string) string {
	if imageURL == "" {
		return ""
	}
	parts := strings.Split(imageURL, "/")
	return parts[len(parts)-1]
}

// ToFullURL 兼容历史数据：已是完整 URL 原样返回，相对路径补上 baseURL
func ToFullURL(baseURL, imagePath string) string {
	if imagePath == "" {
		return ""
	}
	if IsFullURL(imagePath) {
		return imagePath
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(imagePath, "/")
}
