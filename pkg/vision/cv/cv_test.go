package cv

import (
	"image"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// noiseMat 生成三通道随机噪声图
func noiseMat(rng *rand.Rand, rows, cols int) gocv.Mat {
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for ch := 0; ch < 3; ch++ {
				m.SetUCharAt3(r, c, ch, uint8(rng.Intn(256)))
			}
		}
	}
	return m
}

// greyMat 生成三通道完全相同的随机灰度图
func greyMat(rng *rand.Rand, rows, cols int) gocv.Mat {
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := uint8(rng.Intn(256))
			for ch := 0; ch < 3; ch++ {
				m.SetUCharAt3(r, c, ch, v)
			}
		}
	}
	return m
}

// paste 把 src 拷贝到 dst 的 at 位置
func paste(t *testing.T, dst gocv.Mat, src gocv.Mat, at image.Point) {
	t.Helper()
	roi := dst.Region(image.Rect(at.X, at.Y, at.X+src.Cols(), at.Y+src.Rows()))
	defer roi.Close()
	src.CopyTo(&roi)
}

func TestReadImageMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.png")

	_, err := ReadImage(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, path, loadErr.Path)
}

func TestReadImageNotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

	_, err := ReadImage(path)
	var loadErr *LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestLoadPair(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	dir := t.TempDir()
	refPath := filepath.Join(dir, "ref.png")

	ref := noiseMat(rng, 40, 60)
	defer ref.Close()
	require.NoError(t, WriteImage(refPath, ref))

	_, _, err := LoadPair(refPath, filepath.Join(dir, "missing.png"))
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr), "模板缺失应返回 LoadError")
	assert.Contains(t, loadErr.Path, "missing.png")

	reference, template, err := LoadPair(refPath, refPath)
	require.NoError(t, err)
	defer reference.Close()
	defer template.Close()

	w, h := GetResolution(reference)
	assert.Equal(t, 60, w)
	assert.Equal(t, 40, h)
	assert.Equal(t, 3, template.Channels())
}

func TestIsColorImage(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	color := noiseMat(rng, 20, 20)
	defer color.Close()
	assert.True(t, IsColorImage(color))

	grey := greyMat(rng, 20, 20)
	defer grey.Close()
	assert.False(t, IsColorImage(grey), "三通道相同应视为灰度图")

	single := gocv.NewMatWithSize(20, 20, gocv.MatTypeCV8U)
	defer single.Close()
	assert.False(t, IsColorImage(single))

	assert.False(t, SameColorType(color, grey))
	assert.True(t, SameColorType(grey, single))
}

func TestTemplateMatchingExactCopy(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	reference := noiseMat(rng, 120, 160)
	defer reference.Close()
	template := noiseMat(rng, 30, 40)
	defer template.Close()

	offset := image.Pt(57, 33)
	paste(t, reference, template, offset)

	candidate, err := NewTemplateMatching(template, reference).FindBestResult()
	require.NoError(t, err)
	require.NotNil(t, candidate)

	assert.Equal(t, image.Rect(57, 33, 97, 63), candidate.Bounds())
	assert.Equal(t, Point{X: 77, Y: 48}, candidate.Result)
	assert.InDelta(t, 1.0, candidate.Confidence, 1e-3)
}

func TestTemplateMatchingNoiseTemplate(t *testing.T) {
	rng := rand.New(rand.NewSource(4))

	reference := noiseMat(rng, 120, 160)
	defer reference.Close()
	template := noiseMat(rng, 30, 40)
	defer template.Close()

	candidate, err := NewTemplateMatching(template, reference).FindBestResult()
	require.NoError(t, err)
	assert.Less(t, candidate.Confidence, 0.8)

	// 候选区域始终在原图范围内
	bounds := image.Rect(0, 0, reference.Cols(), reference.Rows())
	assert.True(t, candidate.Bounds().In(bounds))
}

func TestTemplateMatchingTemplateTooLarge(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	reference := noiseMat(rng, 20, 20)
	defer reference.Close()
	template := noiseMat(rng, 10, 30)
	defer template.Close()

	_, err := NewTemplateMatching(template, reference).FindBestResult()
	var sizeErr *ImageSizeError
	require.True(t, errors.As(err, &sizeErr))
	assert.Equal(t, [2]int{20, 20}, sizeErr.SourceSize)
	assert.Equal(t, [2]int{30, 10}, sizeErr.SearchSize)
}

func TestCropImage(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	img := noiseMat(rng, 50, 50)
	defer img.Close()

	crop, err := CropImage(img, image.Rect(40, 45, 70, 60))
	require.NoError(t, err)
	defer crop.Close()
	assert.Equal(t, 10, crop.Cols())
	assert.Equal(t, 5, crop.Rows())

	_, err = CropImage(img, image.Rect(60, 60, 80, 80))
	assert.True(t, errors.Is(err, ErrEmptyCrop))
}

func TestVerifyCandidateExact(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	reference := noiseMat(rng, 80, 80)
	defer reference.Close()
	template := noiseMat(rng, 20, 20)
	defer template.Close()
	paste(t, reference, template, image.Pt(10, 15))

	v, err := VerifyCandidate(reference, template, image.Rect(10, 15, 30, 35), 0.9)
	require.NoError(t, err)
	assert.True(t, v.Verified)
	assert.False(t, v.Resized)
	assert.InDelta(t, 1.0, v.Score, 1e-3)

	v, err = VerifyCandidate(reference, template, image.Rect(40, 40, 60, 60), 0.9)
	require.NoError(t, err)
	assert.False(t, v.Verified)
	assert.Less(t, v.Score, 0.9)
}

func TestVerifyCandidateResizesClippedTemplate(t *testing.T) {
	rng := rand.New(rand.NewSource(8))

	reference := noiseMat(rng, 100, 100)
	defer reference.Close()
	template := noiseMat(rng, 40, 40)
	defer template.Close()

	// 候选区域超出右下边界，截断后只剩 30x30，
	// 该位置放的是缩放到 30x30 的模板内容
	shrunk := ResizeImage(template, 30, 30)
	defer shrunk.Close()
	paste(t, reference, shrunk, image.Pt(70, 70))

	v, err := VerifyCandidate(reference, template, image.Rect(70, 70, 110, 110), 0.9)
	require.NoError(t, err)
	assert.True(t, v.Resized)
	assert.True(t, v.Verified)
	assert.InDelta(t, 1.0, v.Score, 1e-3)
}

func TestVerifyCandidateEmptyCrop(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	reference := noiseMat(rng, 30, 30)
	defer reference.Close()
	template := noiseMat(rng, 10, 10)
	defer template.Close()

	_, err := VerifyCandidate(reference, template, image.Rect(30, 30, 40, 40), 0.9)
	assert.True(t, errors.Is(err, ErrEmptyCrop))

	_, err = Verify(gocv.NewMat(), template, 0.9)
	assert.True(t, errors.Is(err, ErrEmptyCrop))
}

func TestAnnotateDrawsRectangle(t *testing.T) {
	rng := rand.New(rand.NewSource(10))

	src := noiseMat(rng, 60, 80)
	defer src.Close()
	before := src.Clone()
	defer before.Close()

	rect := image.Rect(10, 20, 50, 45)
	annotated, err := Annotate(src, rect, DefaultAnnotateOptions())
	require.NoError(t, err)
	defer annotated.Close()

	// BGR 顺序: 绿色 = (0, 255, 0)
	for _, p := range []image.Point{rect.Min, {X: rect.Max.X, Y: rect.Min.Y}, {X: rect.Min.X, Y: rect.Max.Y}} {
		assert.Equal(t, uint8(0), annotated.GetUCharAt3(p.Y, p.X, 0), "B at %v", p)
		assert.Equal(t, uint8(255), annotated.GetUCharAt3(p.Y, p.X, 1), "G at %v", p)
		assert.Equal(t, uint8(0), annotated.GetUCharAt3(p.Y, p.X, 2), "R at %v", p)
	}

	// 原图不应被修改
	assert.Equal(t, 0, countDiff(src, before))
	// 框内部像素不变
	assert.Equal(t, before.GetUCharAt3(30, 30, 0), annotated.GetUCharAt3(30, 30, 0))
}

func TestAnnotateWithLabel(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	src := noiseMat(rng, 80, 120)
	defer src.Close()

	rect := image.Rect(20, 40, 60, 70)
	plain, err := Annotate(src, rect, DefaultAnnotateOptions())
	require.NoError(t, err)
	defer plain.Close()

	opts := DefaultAnnotateOptions()
	opts.Label = "0.9999"
	labeled, err := Annotate(src, rect, opts)
	require.NoError(t, err)
	defer labeled.Close()

	assert.Equal(t, src.Rows(), labeled.Rows())
	assert.Equal(t, src.Cols(), labeled.Cols())
	assert.Equal(t, 3, labeled.Channels())
	assert.NotZero(t, countDiff(plain, labeled), "绘制文字后图像应有变化")
}

func TestWriteImageCreatesDir(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	img := noiseMat(rng, 10, 10)
	defer img.Close()

	path := filepath.Join(t.TempDir(), "a", "b", "out.png")
	require.NoError(t, WriteImage(path, img))

	back, err := ReadImage(path)
	require.NoError(t, err)
	defer back.Close()
	assert.Equal(t, 0, countDiff(img, back))
}

// countDiff 统计两张同尺寸图像不同的元素数
func countDiff(a, b gocv.Mat) int {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(a, b, &diff)

	channels := gocv.Split(diff)
	defer closeAll(channels)

	total := 0
	for _, ch := range channels {
		total += gocv.CountNonZero(ch)
	}
	return total
}
