package tarea

import (
	"context"
	"log"
	"sync/atomic"

	notif "github.com/jegu600/Gestion360/domain/notificacion"
)

// Notifier is the notification sink used by the engine.
type Notifier interface {
	Create(ctx context.Context, req notif.Request) (*notif.Notificacion, error)
	DeleteByTarea(ctx context.Context, tareaID string) (int64, error)
}

// FanoutStats counts delivery outcomes since start.
type FanoutStats struct {
	Delivered uint64 `json:"delivered"`
	Failed    uint64 `json:"failed"`
}

type fanout struct {
	notifier  Notifier
	delivered atomic.Uint64
	failed    atomic.Uint64
}

// deliver writes each request to the sink. Failures are logged and counted
// but never returned.
func (f *fanout) deliver(ctx context.Context, avisos []notif.Request) {
	for _, aviso := range avisos {
		if _, err := f.notifier.Create(ctx, aviso); err != nil {
			f.failed.Add(1)
			log.Printf("[tarea] Warning: failed to deliver %s notificacion to %s for tarea %s: %v",
				aviso.Tipo, aviso.UsuarioID, aviso.TareaID, err)
			continue
		}
		f.delivered.Add(1)
	}
}

func (f *fanout) stats() FanoutStats {
	return FanoutStats{
		Delivered: f.delivered.Load(),
		Failed:    f.failed.Load(),
	}
}
