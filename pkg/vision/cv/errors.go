package cv

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEmptyCrop 裁剪区域与原图没有交集
var ErrEmptyCrop = errors.New("裁剪区域为空")

// LoadError 图像无法解码
type LoadError struct {
	Path string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("无法读取图像: %s", e.Path)
}

// ImageSizeError 图像尺寸错误
type ImageSizeError struct {
	SourceSize [2]int
	SearchSize [2]int
}

func (e *ImageSizeError) Error() string {
	return fmt.Sprintf("搜索图像尺寸大于源图像: 源图 %dx%d, 模板 %dx%d",
		e.SourceSize[0], e.SourceSize[1], e.SearchSize[0], e.SearchSize[1])
}
