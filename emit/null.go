package emit

import "context"

// NullEmitter discards every event. It is the default when no emitter
// is configured via network.WithEmitter.
type NullEmitter struct{}

func (NullEmitter) Emit(Event)                                {}
func (NullEmitter) EmitBatch(context.Context, []Event) error   { return nil }
func (NullEmitter) Flush(context.Context) error                { return nil }
