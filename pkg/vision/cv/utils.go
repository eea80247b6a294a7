package cv

import (
	"image"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ReadImage 读取图像文件（三通道 BGR）
// 解码失败时 OpenCV 返回空 Mat 而不是报错，这里统一转换为 *LoadError
func ReadImage(filename string) (gocv.Mat, error) {
	mat := gocv.IMRead(filename, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return gocv.Mat{}, &LoadError{Path: filename}
	}
	return mat, nil
}

// LoadPair 依次读取原图和模板，任一失败都会释放已读取的图像
func LoadPair(referencePath, templatePath string) (gocv.Mat, gocv.Mat, error) {
	reference, err := ReadImage(referencePath)
	if err != nil {
		return gocv.Mat{}, gocv.Mat{}, errors.Wrap(err, "加载原图失败")
	}

	template, err := ReadImage(templatePath)
	if err != nil {
		reference.Close()
		return gocv.Mat{}, gocv.Mat{}, errors.Wrap(err, "加载模板失败")
	}

	return reference, template, nil
}

// WriteImage 保存图像文件，自动创建目录
func WriteImage(filename string, img gocv.Mat) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "创建目录失败")
	}

	if ok := gocv.IMWrite(filename, img); !ok {
		return errors.Errorf("保存图像失败: %s", filename)
	}
	return nil
}

// GetResolution 获取图像分辨率 (width, height)
func GetResolution(img gocv.Mat) (int, int) {
	return img.Cols(), img.Rows()
}

// CropImage 按矩形裁剪图像，超出原图的部分会被截掉
// 截取后面积为零时返回 ErrEmptyCrop
func CropImage(img gocv.Mat, rect image.Rectangle) (gocv.Mat, error) {
	bounds := image.Rect(0, 0, img.Cols(), img.Rows())
	clipped := rect.Intersect(bounds)
	if clipped.Empty() {
		return gocv.Mat{}, ErrEmptyCrop
	}

	region := img.Region(clipped)
	defer region.Close()
	return region.Clone(), nil
}

// ResizeImage 调整图像大小（双线性插值）
func ResizeImage(img gocv.Mat, width, height int) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Resize(img, &dst, image.Point{X: width, Y: height}, 0, 0, gocv.InterpolationLinear)
	return dst
}

// MatToRGBA 将 gocv.Mat 转换为可绘制的 *image.RGBA
func MatToRGBA(mat gocv.Mat) (*image.RGBA, error) {
	img, err := mat.ToImage()
	if err != nil {
		return nil, errors.Wrap(err, "Mat 转换失败")
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba, nil
}

// RGBAToMat 将 *image.RGBA 转换回三通道 gocv.Mat
func RGBAToMat(img *image.RGBA) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "图像转换失败")
	}
	return mat, nil
}

func closeAll(mats []gocv.Mat) {
	for _, m := range mats {
		m.Close()
	}
}
