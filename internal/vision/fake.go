package vision

import "context"

// Fake is a deterministic Client used by engine tests: it returns queued
// replies in order, looping on the last one once exhausted.
type Fake struct {
	Replies []Reply
	index   int

	// Prompts records the userPrompt of every Send call, in order.
	Prompts []string

	Err error
}

// NewFake returns a Fake pre-loaded with replies.
func NewFake(replies ...Reply) *Fake {
	return &Fake{Replies: replies}
}

func (f *Fake) Send(ctx context.Context, png []byte, systemPrompt, userPrompt string) (*Reply, error) {
	f.Prompts = append(f.Prompts, userPrompt)
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Replies) == 0 {
		return &Reply{Text: ""}, nil
	}
	idx := f.index
	if idx >= len(f.Replies) {
		idx = len(f.Replies) - 1
	} else {
		f.index++
	}
	reply := f.Replies[idx]
	return &reply, nil
}

var _ Client = (*Fake)(nil)
