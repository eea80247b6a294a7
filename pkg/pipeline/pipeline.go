// Package pipeline 串联加载、彩色检查、粗匹配、复核与标注保存
//
// 每次运行都是独立的，不在两次运行之间保留任何状态。
// 软拒绝（未检测到目标）通过 Result 返回，只有硬错误才返回 error。
package pipeline

import (
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/pkg/errors"

	"github.com/zoeyai/templatematch/internal/logger"
	"github.com/zoeyai/templatematch/pkg/config"
	"github.com/zoeyai/templatematch/pkg/vision/cv"
)

// Pipeline 模板匹配流水线
type Pipeline struct {
	cfg     *config.Config
	now     func() time.Time
	log     *logger.Logger
	machine *fsm.FSM
}

// Option 流水线选项
type Option func(*Pipeline)

// WithClock 替换生成输出文件名时使用的时钟
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithLogger 使用指定 logger
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// New 创建流水线
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg: cfg,
		now: time.Now,
		log: logger.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run 便捷函数：用给定配置执行一次流水线
func Run(cfg *config.Config, opts ...Option) (*Result, error) {
	return New(cfg, opts...).Run()
}

// State 返回最近一次运行的状态机状态
func (p *Pipeline) State() string {
	if p.machine == nil {
		return StateStart
	}
	return p.machine.Current()
}

// Run 执行一次完整匹配
func (p *Pipeline) Run() (*Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "配置无效")
	}

	p.machine = newMachine(p.log)
	var scores Scores

	// 1. 加载
	start := time.Now()
	reference, template, err := cv.LoadPair(p.cfg.ReferencePath, p.cfg.TemplatePath)
	if err != nil {
		p.log.LogEvent("LOAD", false, elapsedMs(start), err.Error())
		return nil, err
	}
	defer reference.Close()
	defer template.Close()
	p.log.LogEvent("LOAD", true, elapsedMs(start),
		fmt.Sprintf("reference=%dx%d template=%dx%d",
			reference.Cols(), reference.Rows(), template.Cols(), template.Rows()))
	p.fire(eventLoad)

	// 2. 彩色一致性
	start = time.Now()
	if !cv.SameColorType(reference, template) {
		p.log.LogEvent("COLOR", false, elapsedMs(start), ReasonColorMismatch.String())
		return p.reject(ReasonColorMismatch, scores, nil), nil
	}
	p.log.LogEvent("COLOR", true, elapsedMs(start), "彩色类型一致")
	p.fire(eventCheckColor)

	// 3. 粗匹配
	candidate, err := cv.NewTemplateMatching(template, reference).FindBestResult()
	if err != nil {
		return nil, errors.Wrap(err, "模板匹配失败")
	}
	scores.Coarse, scores.HasCoarse = candidate.Confidence, true
	coarseOK := candidate.Confidence >= p.cfg.CoarseThreshold
	p.log.LogEvent("MATCH", coarseOK, candidate.Time,
		fmt.Sprintf("confidence=%.4f rect=%v", candidate.Confidence, candidate.Bounds()))
	if !coarseOK {
		return p.reject(ReasonLowCoarse, scores, candidate), nil
	}
	p.fire(eventCoarseMatch)

	// 4. 裁剪复核
	start = time.Now()
	verification, err := cv.VerifyCandidate(reference, template, candidate.Bounds(), p.cfg.VerifyThreshold)
	if errors.Is(err, cv.ErrEmptyCrop) {
		p.log.LogEvent("VERIFY", false, elapsedMs(start), err.Error())
		return p.reject(ReasonEmptyCrop, scores, candidate), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "复核失败")
	}
	scores.Verify, scores.HasVerify = verification.Score, true
	p.log.LogEvent("VERIFY", verification.Verified, elapsedMs(start),
		fmt.Sprintf("score=%.4f resized=%v", verification.Score, verification.Resized))
	if !verification.Verified {
		return p.reject(ReasonLowVerify, scores, candidate), nil
	}
	p.fire(eventVerify)

	// 5. 标注并保存
	start = time.Now()
	opts := cv.DefaultAnnotateOptions()
	if p.cfg.Label {
		opts.Label = fmt.Sprintf("%.4f", verification.Score)
	}
	annotated, err := cv.Annotate(reference, candidate.Bounds(), opts)
	if err != nil {
		return nil, errors.Wrap(err, "绘制标注失败")
	}
	defer annotated.Close()

	outputPath := OutputPath(p.cfg.OutputDir, p.cfg.ReferencePath, p.now())
	if err := cv.WriteImage(outputPath, annotated); err != nil {
		p.log.LogEvent("SAVE", false, elapsedMs(start), err.Error())
		return nil, err
	}
	p.log.LogEvent("SAVE", true, elapsedMs(start), outputPath)
	p.fire(eventSave)

	return &Result{
		Outcome:    Accepted,
		OutputPath: outputPath,
		Scores:     scores,
		Candidate:  candidate,
		State:      p.machine.Current(),
	}, nil
}

func (p *Pipeline) reject(reason Reason, scores Scores, candidate *cv.MatchCandidate) *Result {
	p.fire(eventReject)
	return &Result{
		Outcome:   Rejected,
		Reason:    reason,
		Scores:    scores,
		Candidate: candidate,
		State:     p.machine.Current(),
	}
}

// fire 推进状态机；转换表由本包固定，失败只可能是编程错误
func (p *Pipeline) fire(event string) {
	if err := p.machine.Event(event); err != nil {
		p.log.Warn("状态转换失败: %s (%s): %v", event, p.machine.Current(), err)
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
