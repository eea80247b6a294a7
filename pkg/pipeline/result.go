package pipeline

import (
	"fmt"

	"github.com/zoeyai/templatematch/pkg/vision/cv"
)

// Outcome 运行结果类型
type Outcome int

const (
	// Accepted 检测成功并已保存标注图
	Accepted Outcome = iota + 1
	// Rejected 未检测到目标（业务上的软拒绝，不是错误）
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Reason 拒绝原因
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonColorMismatch 原图与模板彩色类型不一致
	ReasonColorMismatch
	// ReasonLowCoarse 粗匹配置信度过低
	ReasonLowCoarse
	// ReasonEmptyCrop 候选区域裁剪为空
	ReasonEmptyCrop
	// ReasonLowVerify 复核分数过低
	ReasonLowVerify
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonColorMismatch:
		return "原图与模板的彩色类型不一致"
	case ReasonLowCoarse:
		return "初始模板匹配分数过低"
	case ReasonEmptyCrop:
		return "裁剪区域为空"
	case ReasonLowVerify:
		return "裁剪区域与模板不匹配"
	default:
		return "未知原因"
	}
}

// Scores 本次运行实际计算出的分数
type Scores struct {
	Coarse    float64 `json:"coarse"`
	HasCoarse bool    `json:"has_coarse"`
	Verify    float64 `json:"verify"`
	HasVerify bool    `json:"has_verify"`
}

// Result 单次运行结果
type Result struct {
	Outcome    Outcome            `json:"outcome"`
	Reason     Reason             `json:"reason,omitempty"`
	OutputPath string             `json:"output_path,omitempty"`
	Scores     Scores             `json:"scores"`
	Candidate  *cv.MatchCandidate `json:"candidate,omitempty"`
	// State 状态机终止时的状态
	State string `json:"state"`
}

// Accepted 是否检测成功
func (r *Result) Accepted() bool {
	return r.Outcome == Accepted
}

// Message 面向用户的结果描述
func (r *Result) Message() string {
	if r.Accepted() {
		return fmt.Sprintf("检测到目标，已保存为: %s", r.OutputPath)
	}
	msg := "未检测到目标: " + r.Reason.String()
	if r.Reason == ReasonLowVerify && r.Scores.HasVerify {
		msg += fmt.Sprintf("，复核分数: %.4f", r.Scores.Verify)
	}
	return msg
}
