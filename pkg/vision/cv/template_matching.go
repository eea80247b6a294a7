package cv

import (
	"image"
	"math"
	"time"

	"gocv.io/x/gocv"
)

// TemplateMatching 全图模板匹配器
// 只取响应矩阵的全局最大值，不做平滑、非极大值抑制或多候选
type TemplateMatching struct {
	imSearch gocv.Mat
	imSource gocv.Mat
}

// NewTemplateMatching 创建模板匹配器
// search 为模板，source 为原图
func NewTemplateMatching(search, source gocv.Mat) *TemplateMatching {
	return &TemplateMatching{
		imSearch: search,
		imSource: source,
	}
}

// FindBestResult 查找最佳匹配位置
// 无论置信度高低都会返回候选，阈值判断由调用方完成
func (t *TemplateMatching) FindBestResult() (*MatchCandidate, error) {
	startTime := time.Now()

	if err := checkSourceLargerThanSearch(t.imSource, t.imSearch); err != nil {
		return nil, err
	}

	maxVal, maxLoc := matchResponse(t.imSource, t.imSearch)

	h, w := t.imSearch.Rows(), t.imSearch.Cols()
	middlePoint, rectangle := getTargetRectangle(maxLoc, w, h)

	return &MatchCandidate{
		Result:     middlePoint,
		Rectangle:  rectangle,
		Confidence: maxVal,
		Time:       float64(time.Since(startTime).Milliseconds()),
	}, nil
}

// matchResponse 计算 TM_CCOEFF_NORMED 响应矩阵并返回最大值及其位置
func matchResponse(source, search gocv.Mat) (float64, image.Point) {
	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(source, search, &result, gocv.TmCcoeffNormed, mask)

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)
	score := float64(maxVal)
	if math.IsNaN(score) {
		score = 0
	}
	return score, maxLoc
}

// getTargetRectangle 计算目标区域
func getTargetRectangle(leftTopPos image.Point, w, h int) (Point, Rectangle) {
	xMin, yMin := leftTopPos.X, leftTopPos.Y

	middlePoint := Point{X: xMin + w/2, Y: yMin + h/2}

	// 四个角点: 左上 -> 左下 -> 右下 -> 右上
	rectangle := Rectangle{
		TopLeft:     Point{X: xMin, Y: yMin},
		BottomLeft:  Point{X: xMin, Y: yMin + h},
		BottomRight: Point{X: xMin + w, Y: yMin + h},
		TopRight:    Point{X: xMin + w, Y: yMin},
	}

	return middlePoint, rectangle
}

// checkSourceLargerThanSearch 检查源图像是否大于搜索图像
func checkSourceLargerThanSearch(source, search gocv.Mat) error {
	if source.Rows() < search.Rows() || source.Cols() < search.Cols() {
		return &ImageSizeError{
			SourceSize: [2]int{source.Cols(), source.Rows()},
			SearchSize: [2]int{search.Cols(), search.Rows()},
		}
	}
	return nil
}
