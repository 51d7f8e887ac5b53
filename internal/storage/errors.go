package storage

import (
	"errors"
	"net/http"

	"github.com/minio/minio-go/v7"
)

// ErrObjectNotFound 表示对象已不存在（头像被清理、导出被删除等）。
var ErrObjectNotFound = errors.New("object not found")

// ErrObjectTooLarge 对象超过上限时由 ReadObject 返回。
var ErrObjectTooLarge = errors.New("object too large")

func isNoSuchKey(err error) bool {
	if err == nil {
		return false
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket"
}

// notFound 将 key 不存在的响应映射为 ErrObjectNotFound，其他错误原样返回。
func notFound(err error) error {
	if isNoSuchKey(err) {
		return ErrObjectNotFound
	}
	return err
}
