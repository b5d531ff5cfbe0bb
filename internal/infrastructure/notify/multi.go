package notify

import (
	"context"
	"errors"

	appnotify "github.com/jhoicas/materiales-api/internal/application/notify"
)

// Multi reparte cada evento a todos los notifiers y junta sus errores.
type Multi []appnotify.Notifier

// Notify implementa notify.Notifier.
func (m Multi) Notify(ctx context.Context, ev appnotify.Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Combine devuelve nil si no hay notifiers, el único si hay uno, o un Multi.
func Combine(ns ...appnotify.Notifier) appnotify.Notifier {
	var out Multi
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}
