package logging

import "github.com/rs/zerolog"

// ContextHook copies the list id and operation stored on an event's context
// onto the event. Use it with logger.Info().Ctx(ctx).
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}
	for key, value := range map[string]string{
		"list_id": GetListID(ctx),
		"op":      GetOp(ctx),
	} {
		if value != "" {
			e.Str(key, value)
		}
	}
}
