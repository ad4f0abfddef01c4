package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ngjiaxun/platter/internal/application/invitation"
	"github.com/ngjiaxun/platter/internal/domain"
	"github.com/ngjiaxun/platter/internal/infrastructure/http/middleware"
)

// InvitationsHandler handles /invitations/*. Requires JWT.
type InvitationsHandler struct {
	createUC *invitation.CreateInvitation
	acceptUC *invitation.AcceptInvitation
	rejectUC *invitation.RejectInvitation
	cancelUC *invitation.CancelInvitation
	listUC   *invitation.ListInvitations
}

// NewInvitationsHandler creates a handler for invitation endpoints.
func NewInvitationsHandler(createUC *invitation.CreateInvitation, acceptUC *invitation.AcceptInvitation, rejectUC *invitation.RejectInvitation, cancelUC *invitation.CancelInvitation, listUC *invitation.ListInvitations) *InvitationsHandler {
	return &InvitationsHandler{
		createUC: createUC,
		acceptUC: acceptUC,
		rejectUC: rejectUC,
		cancelUC: cancelUC,
		listUC:   listUC,
	}
}

// InvitationResponse is the JSON shape for an invitation.
type InvitationResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	EntityID  string `json:"entity_id"`
	Role      string `json:"role"`
	InvitedBy string `json:"invited_by"`
	Accepted  bool   `json:"accepted"`
	CreatedAt string `json:"created_at"`
}

func invitationResponse(inv *domain.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:        inv.ID.String(),
		Email:     inv.Email,
		EntityID:  inv.EntityID.String(),
		Role:      string(inv.Role),
		InvitedBy: inv.InvitedBy.String(),
		Accepted:  inv.Accepted,
		CreatedAt: inv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *InvitationsHandler) invitationID(w http.ResponseWriter, r *http.Request) (domain.InvitationID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid invitation id")
		return domain.InvitationID{}, false
	}
	return domain.NewInvitationID(id), true
}

// Create issues an invitation. The actor must hold change on the target
// entity, directly or via an ancestor.
func (h *InvitationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		Email    string `json:"email" validate:"required,email"`
		EntityID string `json:"entity_id" validate:"required,uuid"`
		Role     string `json:"role" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	body.Email = SanitizeEmail(body.Email)
	if err := validate.Struct(body); err != nil {
		writeErr(w, http.StatusBadRequest, "email, entity_id and role required")
		return
	}
	entityID, err := uuid.Parse(body.EntityID)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid entity id")
		return
	}
	inv, err := h.createUC.Execute(r.Context(), invitation.CreateInvitationInput{
		Email:     body.Email,
		EntityID:  domain.NewEntityID(entityID),
		Role:      domain.RoleName(body.Role),
		InvitedBy: actor.ID,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, invitationResponse(inv))
}

// List returns the actor's pending invitations (issued, not accepted).
func (h *InvitationsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	invs, err := h.listUC.Execute(r.Context(), actor.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	items := make([]InvitationResponse, 0, len(invs))
	for _, inv := range invs {
		items = append(items, invitationResponse(inv))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"invitations": items})
}

// Accept grants the invited role's group membership to the actor.
func (h *InvitationsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := h.invitationID(w, r)
	if !ok {
		return
	}
	if err := h.acceptUC.Execute(r.Context(), id, actor.ID); err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "accepted"})
}

// Reject deletes a pending invitation addressed to the actor.
func (h *InvitationsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := h.invitationID(w, r)
	if !ok {
		return
	}
	if err := h.rejectUC.Execute(r.Context(), id, actor); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Cancel deletes a pending invitation issued by the actor.
func (h *InvitationsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := h.invitationID(w, r)
	if !ok {
		return
	}
	if err := h.cancelUC.Execute(r.Context(), id, actor.ID); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
