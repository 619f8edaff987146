package link

import "github.com/ganot/ticklink/internal/engine"

// Observer receives the emissions of one subscription. All calls for a
// subscription are made from a single goroutine, in emission order.
type Observer interface {
	OnNext(result *engine.Result)
	OnError(err error)
	OnComplete()
}

// ObserverFuncs adapts plain functions to Observer. Nil funcs are skipped.
type ObserverFuncs struct {
	Next     func(*engine.Result)
	Error    func(error)
	Complete func()
}

func (o ObserverFuncs) OnNext(result *engine.Result) {
	if o.Next != nil {
		o.Next(result)
	}
}

func (o ObserverFuncs) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

func (o ObserverFuncs) OnComplete() {
	if o.Complete != nil {
		o.Complete()
	}
}
