package threadmgr

// Verdict is the outcome of one worker's queue poll, per spec §4.9:
// it either found work tagged as its own to insert (DoOwn), found
// work to merely compare against without inserting (DoOther), found
// an empty queue and should sleep (Wait), or found its queue closed
// and drained (Finish).
type Verdict int

const (
	Wait Verdict = iota
	DoOwn
	DoOther
	Finish
)

func (v Verdict) String() string {
	switch v {
	case Wait:
		return "wait"
	case DoOwn:
		return "do_own"
	case DoOther:
		return "do_other"
	case Finish:
		return "finish"
	default:
		return "unknown"
	}
}
