package tasklog

import "fmt"

// Fake is a deterministic in-memory Logger used by engine tests: every call
// is recorded into Records instead of touching disk, and SaveScreenshot
// returns a synthetic path.
type Fake struct {
	Records     []Record
	Screenshots []string
	seq         int
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) StartTaskLog(taskName string) (string, error) {
	return "fake://" + taskName + ".jsonl", nil
}

func (f *Fake) LogTaskStart(taskName string, params map[string]string) {
	f.Records = append(f.Records, Record{Kind: KindTaskStart, TaskName: taskName, Params: params})
}

func (f *Fake) LogStepStart(index int, description string) {
	f.Records = append(f.Records, Record{Kind: KindStepStart, StepIndex: index, Description: description})
}

func (f *Fake) LogStepComplete(index int, success bool, err error) {
	rec := Record{Kind: KindStepComplete, StepIndex: index, Success: success}
	if err != nil {
		rec.Error = err.Error()
	}
	f.Records = append(f.Records, rec)
}

func (f *Fake) LogTaskComplete(success bool, durationMs int64, err error) {
	rec := Record{Kind: KindTaskComplete, Success: success, DurationMs: durationMs}
	if err != nil {
		rec.Error = err.Error()
	}
	f.Records = append(f.Records, rec)
}

func (f *Fake) LogAction(stepIndex int, kind string, detail map[string]any) {
	f.Records = append(f.Records, Record{Kind: KindAction, StepIndex: stepIndex, ActionKind: kind, Detail: detail})
}

func (f *Fake) SaveScreenshot(pngBytes []byte, prefix string) (string, error) {
	f.seq++
	path := fmt.Sprintf("fake://screenshots/%03d-%s.png", f.seq, prefix)
	f.Screenshots = append(f.Screenshots, path)
	return path, nil
}

func (f *Fake) Flush() error { return nil }

var _ Logger = (*Fake)(nil)
