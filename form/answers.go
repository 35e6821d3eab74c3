package form

import "github.com/mbolis/catering-order/model"

// Answers is the answer store of one session. It is not safe for concurrent
// use; the owning Session serialises access.
type Answers struct {
	values map[model.Key]model.Answer
}

func NewAnswers() *Answers {
	return &Answers{values: map[model.Key]model.Answer{}}
}

func (a *Answers) Get(key model.Key) (model.Answer, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Of returns the answer recorded for el.
func (a *Answers) Of(el model.Element) (model.Answer, bool) {
	return a.Get(model.KeyOf(el))
}

func (a *Answers) Set(key model.Key, value model.Answer) {
	if value == nil {
		delete(a.values, key)
		return
	}
	a.values[key] = value
}

func (a *Answers) Clear(key model.Key) {
	delete(a.values, key)
}

func (a *Answers) Len() int {
	return len(a.values)
}

// Snapshot renders the store with string keys, for JSON views.
func (a *Answers) Snapshot() map[string]model.Answer {
	out := make(map[string]model.Answer, len(a.values))
	for key, v := range a.values {
		out[key.String()] = v
	}
	return out
}
