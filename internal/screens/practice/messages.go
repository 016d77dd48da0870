package practice

import (
	"github.com/arundaya/parlo/internal/agent"
	"github.com/arundaya/parlo/internal/assess"
	"github.com/arundaya/parlo/internal/store"
)

// transcriptMsg is sent when a stopped take has been transcribed.
type transcriptMsg struct {
	Seq  uint64
	Text string
	Err  error
}

// partnerReplyMsg carries the assistant's next dialogue line.
type partnerReplyMsg struct {
	Seq  uint64
	Text string
	Err  error
}

// assessedMsg is sent when end-of-session scoring and persistence finish.
type assessedMsg struct {
	Seq        uint64
	Assessment assess.Assessment
	Save       *store.SaveResult
	Err        error
}

// reflectedMsg carries the post-session reflection.
type reflectedMsg struct {
	Seq        uint64
	Reflection agent.Reflection
	Err        error
}

// plannedMsg carries the next-session plan, nil when planning failed.
type plannedMsg struct {
	Seq  uint64
	Plan *agent.Plan
	Err  error
}

// spokenMsg is sent when spoken playback of a line finishes.
type spokenMsg struct {
	Err error
}
