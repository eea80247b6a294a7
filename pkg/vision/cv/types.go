package cv

import "image"

// Point 表示二维坐标点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rectangle 表示矩形区域（四个角点）
type Rectangle struct {
	TopLeft     Point `json:"top_left"`
	BottomLeft  Point `json:"bottom_left"`
	BottomRight Point `json:"bottom_right"`
	TopRight    Point `json:"top_right"`
}

// MatchCandidate 粗匹配得到的候选区域
type MatchCandidate struct {
	// Result 候选区域中心点
	Result Point `json:"result"`
	// Rectangle 候选区域四个角点，宽高取自模板
	Rectangle Rectangle `json:"rectangle"`
	// Confidence 互相关响应最大值，范围 [-1, 1]
	Confidence float64 `json:"confidence"`
	// Time 匹配耗时（毫秒）
	Time float64 `json:"time,omitempty"`
}

// Bounds 返回候选区域对应的 image.Rectangle
func (c *MatchCandidate) Bounds() image.Rectangle {
	return image.Rect(c.Rectangle.TopLeft.X, c.Rectangle.TopLeft.Y,
		c.Rectangle.BottomRight.X, c.Rectangle.BottomRight.Y)
}

// Verification 裁剪区域复核结果
type Verification struct {
	// Verified 分数是否达到复核阈值
	Verified bool `json:"verified"`
	// Score 复核互相关最大值
	Score float64 `json:"score"`
	// Resized 复核前是否把模板缩放到了裁剪区域尺寸
	Resized bool `json:"resized,omitempty"`
}
