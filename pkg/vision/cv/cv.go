// Package cv 提供基于归一化互相关 (TM_CCOEFF_NORMED) 的模板定位与复核
//
// 流程分为四步:
//   - 读取原图与模板 (ReadImage / LoadPair)
//   - 彩色一致性检查 (IsColorImage)
//   - 全图粗匹配 (TemplateMatching.FindBestResult)
//   - 裁剪复核与标注 (VerifyCandidate / Annotate / WriteImage)
//
// 基本用法:
//
//	reference, template, err := cv.LoadPair("screen.png", "button.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reference.Close()
//	defer template.Close()
//
//	candidate, err := cv.NewTemplateMatching(template, reference).FindBestResult()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("候选位置: %v, 置信度: %.4f\n", candidate.Bounds(), candidate.Confidence)
package cv
