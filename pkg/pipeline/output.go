package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout 输出文件名中的时间戳格式，精确到秒
const TimestampLayout = "20060102_150405"

// OutputPath 生成标注图路径: <dir>/detected_<原图文件名去扩展名>_<YYYYMMDD_HHMMSS>.png
// 同一秒内对同名原图的两次运行会得到相同路径，后写入的覆盖先写入的
func OutputPath(dir, referencePath string, now time.Time) string {
	base := filepath.Base(referencePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	name := fmt.Sprintf("detected_%s_%s.png", stem, now.Format(TimestampLayout))
	return filepath.Join(dir, name)
}
