package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 15 * time.Second

// Dispatcher envía eventos en segundo plano sin afectar al llamador.
// Un Dispatcher nil o sin notifier es un no-op.
type Dispatcher struct {
	notifier Notifier
	log      zerolog.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewDispatcher construye el dispatcher. notifier puede ser nil (notificaciones deshabilitadas).
func NewDispatcher(notifier Notifier, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		log:      log.With().Str("component", "notify").Logger(),
		timeout:  defaultTimeout,
	}
}

// Enabled indica si hay un notifier configurado.
func (d *Dispatcher) Enabled() bool {
	return d != nil && d.notifier != nil
}

// Dispatch programa el envío. Nunca bloquea ni devuelve error; errores y panics quedan en el log.
// El contexto del llamador no se retiene: en fiber es el fasthttp.RequestCtx, que se recicla al
// terminar el handler. El envío usa un contexto propio con timeout.
func (d *Dispatcher) Dispatch(_ context.Context, ev Event) {
	if !d.Enabled() {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.send(sendCtx, ev); err != nil {
			d.log.Warn().Err(err).
				Str("kind", string(ev.Kind)).
				Str("entity_id", ev.EntityID).
				Msg("notificación no enviada")
		}
	}()
}

func (d *Dispatcher) send(ctx context.Context, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic en notifier: %v", r)
		}
	}()
	return d.notifier.Notify(ctx, ev)
}

// Wait espera los envíos en curso (apagado ordenado y tests).
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
