package cv

import (
	"gocv.io/x/gocv"
)

// IsColorImage 判断图像是否为真正的彩色图
// 三通道且各通道不完全相同才算彩色；三通道完全一致的图只是复制成三通道的灰度图
func IsColorImage(img gocv.Mat) bool {
	if img.Empty() || img.Channels() != 3 {
		return false
	}

	channels := gocv.Split(img)
	defer closeAll(channels)
	if len(channels) != 3 {
		return false
	}

	b, g, r := channels[0], channels[1], channels[2]
	return !(channelsEqual(b, g) && channelsEqual(b, r))
}

// SameColorType 判断两张图的彩色分类是否一致
func SameColorType(a, b gocv.Mat) bool {
	return IsColorImage(a) == IsColorImage(b)
}

// channelsEqual 逐像素比较两个单通道图
func channelsEqual(a, b gocv.Mat) bool {
	diff := gocv.NewMat()
	defer diff.Close()

	gocv.AbsDiff(a, b, &diff)
	return gocv.CountNonZero(diff) == 0
}
