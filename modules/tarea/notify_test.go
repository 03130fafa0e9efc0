package tarea

import (
	"testing"

	notif "github.com/jegu600/Gestion360/domain/notificacion"
	domain "github.com/jegu600/Gestion360/domain/tarea"
	"github.com/jegu600/Gestion360/domain/usuario"
)

func TestAvisosCreacion(t *testing.T) {
	actor := usuario.Actor{ID: "a"}

	tests := []struct {
		name          string
		responsable   string
		prioridad     domain.Prioridad
		wantCount     int
		wantPrioridad notif.Prioridad
	}{
		{"self assigned", "a", domain.PrioridadUrgente, 0, ""},
		{"baja", "b", domain.PrioridadBaja, 1, notif.PrioridadMedia},
		{"media", "b", domain.PrioridadMedia, 1, notif.PrioridadMedia},
		{"alta", "b", domain.PrioridadAlta, 1, notif.PrioridadAlta},
		{"urgente", "b", domain.PrioridadUrgente, 1, notif.PrioridadAlta},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tarea := &domain.Tarea{ID: "t1", Titulo: "Revisar", Responsable: tt.responsable, Prioridad: tt.prioridad}
			got := avisosCreacion(tarea, actor)
			if len(got) != tt.wantCount {
				t.Fatalf("avisosCreacion() returned %d avisos, want %d", len(got), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			if got[0].Prioridad != tt.wantPrioridad {
				t.Errorf("Prioridad = %v, want %v", got[0].Prioridad, tt.wantPrioridad)
			}
			if got[0].TareaID != "t1" || got[0].UsuarioID != "b" {
				t.Errorf("aviso = %+v, want tarea t1 for b", got[0])
			}
		})
	}
}

func TestAvisosActualizacion(t *testing.T) {
	actor := usuario.Actor{ID: "a"}
	prev := &domain.Tarea{ID: "t1", Titulo: "Revisar", Responsable: "b", Prioridad: domain.PrioridadMedia}

	tests := []struct {
		name        string
		responsable string
		policy      Policy
		want        []notif.Tipo
	}{
		{"same responsable", "b", DefaultPolicy(), []notif.Tipo{notif.TipoTareaActualizada}},
		{"reassigned dual", "c", DefaultPolicy(), []notif.Tipo{notif.TipoTareaAsignada, notif.TipoTareaActualizada}},
		{"reassigned single", "c", Policy{}, []notif.Tipo{notif.TipoTareaAsignada}},
		{"reassigned to actor", "a", DefaultPolicy(), nil},
		{"reassigned to actor single", "a", Policy{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := *prev
			next.Responsable = tt.responsable
			got := avisosActualizacion(prev, &next, actor, tt.policy)
			if len(got) != len(tt.want) {
				t.Fatalf("avisosActualizacion() = %+v, want tipos %v", got, tt.want)
			}
			for i, aviso := range got {
				if aviso.Tipo != tt.want[i] {
					t.Errorf("aviso[%d].Tipo = %v, want %v", i, aviso.Tipo, tt.want[i])
				}
				if aviso.UsuarioID != tt.responsable {
					t.Errorf("aviso[%d].UsuarioID = %v, want %v", i, aviso.UsuarioID, tt.responsable)
				}
			}
		})
	}
}

func TestAvisosEstado(t *testing.T) {
	actor := usuario.Actor{ID: "a"}

	tests := []struct {
		name        string
		responsable string
		estado      domain.Estado
		change      domain.Change
		wantTipo    notif.Tipo
		wantMensaje string
	}{
		{"completed", "b", domain.EstadoCompletada, domain.ChangeCompleted, notif.TipoTareaCompletada, "Task 'Revisar' marked completed"},
		{"other", "b", domain.EstadoEnProgreso, domain.ChangeOther, notif.TipoTareaActualizada, "Task 'Revisar' status changed to En progreso"},
		{"none", "b", domain.EstadoPendiente, domain.ChangeNone, "", ""},
		{"actor is responsable", "a", domain.EstadoCompletada, domain.ChangeCompleted, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tarea := &domain.Tarea{ID: "t1", Titulo: "Revisar", Responsable: tt.responsable, Estado: tt.estado}
			got := avisosEstado(tarea, tt.change, actor)
			if tt.wantTipo == "" {
				if len(got) != 0 {
					t.Errorf("avisosEstado() = %+v, want none", got)
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("avisosEstado() returned %d avisos, want 1", len(got))
			}
			if got[0].Tipo != tt.wantTipo || got[0].Mensaje != tt.wantMensaje {
				t.Errorf("avisosEstado() = %+v, want %v %q", got[0], tt.wantTipo, tt.wantMensaje)
			}
			if got[0].Prioridad != notif.PrioridadMedia {
				t.Errorf("Prioridad = %v, want media", got[0].Prioridad)
			}
		})
	}
}
