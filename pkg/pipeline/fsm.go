package pipeline

import (
	"github.com/looplab/fsm"

	"github.com/zoeyai/templatematch/internal/logger"
)

// 运行状态
const (
	StateStart         = "start"
	StateLoaded        = "loaded"
	StateColorChecked  = "color_checked"
	StateCoarseMatched = "coarse_matched"
	StateVerified      = "verified"
	StateSaved         = "saved"
	StateRejected      = "rejected"
)

// 状态事件
const (
	eventLoad        = "load"
	eventCheckColor  = "check_color"
	eventCoarseMatch = "coarse_match"
	eventVerify      = "verify"
	eventSave        = "save"
	eventReject      = "reject"
)

// newMachine 创建单次运行的状态机
// saved 与 rejected 为终态，没有任何出边
func newMachine(log *logger.Logger) *fsm.FSM {
	return fsm.NewFSM(
		StateStart,
		fsm.Events{
			{Name: eventLoad, Src: []string{StateStart}, Dst: StateLoaded},
			{Name: eventCheckColor, Src: []string{StateLoaded}, Dst: StateColorChecked},
			{Name: eventCoarseMatch, Src: []string{StateColorChecked}, Dst: StateCoarseMatched},
			{Name: eventVerify, Src: []string{StateCoarseMatched}, Dst: StateVerified},
			{Name: eventSave, Src: []string{StateVerified}, Dst: StateSaved},
			{Name: eventReject, Src: []string{StateLoaded, StateColorChecked, StateCoarseMatched}, Dst: StateRejected},
		},
		fsm.Callbacks{
			"after_event": func(e *fsm.Event) {
				log.Debug("[%s -> %s] %s", e.Src, e.Dst, e.Event)
			},
		},
	)
}
