package tarea

import (
	"fmt"

	notif "github.com/jegu600/Gestion360/domain/notificacion"
	domain "github.com/jegu600/Gestion360/domain/tarea"
	"github.com/jegu600/Gestion360/domain/usuario"
)

// Policy holds the switches of the notification rules.
type Policy struct {
	// DualNotifyOnReassign sends both tarea_asignada and tarea_actualizada
	// when an update changes the responsable. When false only the
	// assignment is sent.
	DualNotifyOnReassign bool
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{DualNotifyOnReassign: true}
}

// avisosCreacion derives the notifications for a newly created task.
func avisosCreacion(t *domain.Tarea, actor usuario.Actor) []notif.Request {
	if t.Responsable == actor.ID {
		return nil
	}
	return []notif.Request{{
		Mensaje:   fmt.Sprintf("You have been assigned a new task: '%s'", t.Titulo),
		UsuarioID: t.Responsable,
		TareaID:   t.ID,
		Tipo:      notif.TipoTareaAsignada,
		Prioridad: prioridadAviso(t.Prioridad),
	}}
}

// avisosActualizacion derives the notifications for a full update.
func avisosActualizacion(prev, next *domain.Tarea, actor usuario.Actor, policy Policy) []notif.Request {
	var avisos []notif.Request

	reassigned := next.Responsable != prev.Responsable
	if reassigned && next.Responsable != actor.ID {
		avisos = append(avisos, notif.Request{
			Mensaje:   fmt.Sprintf("You have been assigned the task: '%s'", next.Titulo),
			UsuarioID: next.Responsable,
			TareaID:   next.ID,
			Tipo:      notif.TipoTareaAsignada,
			Prioridad: prioridadAviso(next.Prioridad),
		})
	}

	if reassigned && !policy.DualNotifyOnReassign {
		return avisos
	}

	if next.Responsable != actor.ID {
		avisos = append(avisos, notif.Request{
			Mensaje:   fmt.Sprintf("Task '%s' was updated", next.Titulo),
			UsuarioID: next.Responsable,
			TareaID:   next.ID,
			Tipo:      notif.TipoTareaActualizada,
			Prioridad: notif.PrioridadMedia,
		})
	}
	return avisos
}

// avisosEstado derives the notifications for a status change.
func avisosEstado(t *domain.Tarea, change domain.Change, actor usuario.Actor) []notif.Request {
	if change == domain.ChangeNone || t.Responsable == actor.ID {
		return nil
	}

	req := notif.Request{
		UsuarioID: t.Responsable,
		TareaID:   t.ID,
		Prioridad: notif.PrioridadMedia,
	}
	if change == domain.ChangeCompleted {
		req.Mensaje = fmt.Sprintf("Task '%s' marked completed", t.Titulo)
		req.Tipo = notif.TipoTareaCompletada
	} else {
		req.Mensaje = fmt.Sprintf("Task '%s' status changed to %s", t.Titulo, t.Estado.Label())
		req.Tipo = notif.TipoTareaActualizada
	}
	return []notif.Request{req}
}

// prioridadAviso maps a task priority to a notification priority.
func prioridadAviso(p domain.Prioridad) notif.Prioridad {
	if p.IsHigh() {
		return notif.PrioridadAlta
	}
	return notif.PrioridadMedia
}
