package cv

import (
	"image"
	"image/color"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// 标注默认样式：绿色，线宽 2
var (
	DefaultBoxColor     = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	DefaultBoxThickness = 2
)

const labelFontSize = 14.0

// AnnotateOptions 标注选项
type AnnotateOptions struct {
	Color     color.RGBA
	Thickness int
	// Label 非空时绘制在矩形框上方
	Label string
}

// DefaultAnnotateOptions 默认标注选项
func DefaultAnnotateOptions() AnnotateOptions {
	return AnnotateOptions{
		Color:     DefaultBoxColor,
		Thickness: DefaultBoxThickness,
	}
}

// Annotate 在原图副本上绘制矩形框，原图保持不变
func Annotate(src gocv.Mat, rect image.Rectangle, opts AnnotateOptions) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.Mat{}, errors.New("标注图像为空")
	}
	if opts.Thickness <= 0 {
		opts.Thickness = DefaultBoxThickness
	}

	annotated := src.Clone()
	// Line8 保证边框像素是纯色，不做抗锯齿混合
	gocv.RectangleWithParams(&annotated, rect, opts.Color, opts.Thickness, gocv.Line8, 0)

	if opts.Label == "" {
		return annotated, nil
	}

	labeled, err := drawLabel(annotated, rect, opts.Label, opts.Color)
	annotated.Close()
	if err != nil {
		return gocv.Mat{}, err
	}
	return labeled, nil
}

var (
	labelFontOnce sync.Once
	labelFont     *truetype.Font
	labelFontErr  error
)

func loadLabelFont() (*truetype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = freetype.ParseFont(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// drawLabel 在矩形框上方绘制文字，空间不够时画在框下方
func drawLabel(mat gocv.Mat, rect image.Rectangle, text string, col color.RGBA) (gocv.Mat, error) {
	f, err := loadLabelFont()
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "加载字体失败")
	}

	rgba, err := MatToRGBA(mat)
	if err != nil {
		return gocv.Mat{}, err
	}

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(labelFontSize)
	c.SetClip(rgba.Bounds())
	c.SetDst(rgba)
	c.SetSrc(image.NewUniform(color.RGBA{R: col.R, G: col.G, B: col.B, A: 255}))
	c.SetHinting(font.HintingFull)

	x := rect.Min.X
	if x < 0 {
		x = 0
	}
	baseline := rect.Min.Y - 4
	if baseline < int(labelFontSize) {
		baseline = rect.Max.Y + int(labelFontSize) + 2
	}

	if _, err := c.DrawString(text, freetype.Pt(x, baseline)); err != nil {
		return gocv.Mat{}, errors.Wrap(err, "绘制文字失败")
	}

	return RGBAToMat(rgba)
}
