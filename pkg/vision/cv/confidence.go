package cv

import (
	"image"

	"gocv.io/x/gocv"
)

// Verify 用模板复核裁剪区域
// 尺寸不一致时（只会因边缘截断产生）先把模板缩放到裁剪区域大小再比较
func Verify(crop, template gocv.Mat, threshold float64) (Verification, error) {
	if crop.Empty() || crop.Rows() == 0 || crop.Cols() == 0 {
		return Verification{}, ErrEmptyCrop
	}

	search := template
	resized := false
	if crop.Rows() != template.Rows() || crop.Cols() != template.Cols() {
		search = ResizeImage(template, crop.Cols(), crop.Rows())
		defer search.Close()
		resized = true
	}

	score, _ := matchResponse(crop, search)
	return Verification{
		Verified: score >= threshold,
		Score:    score,
		Resized:  resized,
	}, nil
}

// VerifyCandidate 裁剪原图中的候选区域并复核
func VerifyCandidate(source, template gocv.Mat, rect image.Rectangle, threshold float64) (Verification, error) {
	crop, err := CropImage(source, rect)
	if err != nil {
		return Verification{}, err
	}
	defer crop.Close()

	return Verify(crop, template, threshold)
}
