package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ngjiaxun/platter/internal/application/access"
	"github.com/ngjiaxun/platter/internal/application/entity"
	"github.com/ngjiaxun/platter/internal/application/ports"
	"github.com/ngjiaxun/platter/internal/domain"
	domerrors "github.com/ngjiaxun/platter/internal/domain/errors"
	"github.com/ngjiaxun/platter/internal/infrastructure/http/middleware"
)

// EntitiesHandler handles /entities/{type}/*. Requires JWT.
type EntitiesHandler struct {
	schema    *domain.Schema
	listUC    *entity.ListEntities
	createUC  *entity.CreateEntity
	getUC     *entity.GetEntity
	updateUC  *entity.UpdateEntity
	deleteUC  *entity.DeleteEntity
	resolver  *access.Resolver
	groupRepo ports.GroupRepository
}

// NewEntitiesHandler creates a handler for hierarchy entity endpoints.
func NewEntitiesHandler(schema *domain.Schema, listUC *entity.ListEntities, createUC *entity.CreateEntity, getUC *entity.GetEntity, updateUC *entity.UpdateEntity, deleteUC *entity.DeleteEntity, resolver *access.Resolver, groupRepo ports.GroupRepository) *EntitiesHandler {
	return &EntitiesHandler{
		schema:    schema,
		listUC:    listUC,
		createUC:  createUC,
		getUC:     getUC,
		updateUC:  updateUC,
		deleteUC:  deleteUC,
		resolver:  resolver,
		groupRepo: groupRepo,
	}
}

// EntityResponse is the JSON shape for a hierarchy entity.
type EntityResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	ParentID  *string `json:"parent_id,omitempty"`
	Name      string  `json:"name"`
	Fields    string  `json:"fields,omitempty"`
	CreatedBy string  `json:"created_by"`
	CreatedAt string  `json:"created_at"`
}

// EntityDetailResponse adds the actor's capabilities and the children.
type EntityDetailResponse struct {
	EntityResponse
	CanChange bool             `json:"can_change"`
	CanDelete bool             `json:"can_delete"`
	Children  []EntityResponse `json:"children"`
}

// GroupResponse is the JSON shape for an access group with its members.
type GroupResponse struct {
	ID      string   `json:"id"`
	Role    string   `json:"role"`
	Name    string   `json:"name"`
	Actions []string `json:"actions"`
	Members []string `json:"members"`
}

func entityResponse(e *domain.Entity) EntityResponse {
	resp := EntityResponse{
		ID:        e.ID.String(),
		Type:      string(e.Type),
		Name:      e.Content.DisplayName(),
		Fields:    domain.ContentFields(e.Content),
		CreatedBy: e.CreatedBy.String(),
		CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if e.ParentID != nil {
		s := e.ParentID.String()
		resp.ParentID = &s
	}
	return resp
}

func (h *EntitiesHandler) entityType(w http.ResponseWriter, r *http.Request) (domain.EntityType, bool) {
	t, err := domain.ParseEntityType(chi.URLParam(r, "type"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "unknown entity type")
		return "", false
	}
	if _, err := h.schema.RankOf(t); err != nil {
		writeErr(w, http.StatusBadRequest, "entity type not in hierarchy")
		return "", false
	}
	return t, true
}

func (h *EntitiesHandler) entityID(w http.ResponseWriter, r *http.Request) (domain.EntityID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid entity id")
		return domain.EntityID{}, false
	}
	return domain.NewEntityID(id), true
}

// List returns entities of one type the actor may view, including those
// reachable through ancestor grants.
func (h *EntitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entityType, ok := h.entityType(w, r)
	if !ok {
		return
	}
	middleware.RecordPermissionResolution(string(entityType), string(domain.ActionView))
	entities, err := h.listUC.Execute(r.Context(), entityType, actor.ID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	items := make([]EntityResponse, 0, len(entities))
	for _, e := range entities {
		items = append(items, entityResponse(e))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entities": items})
}

// Create creates an entity under the given parent and provisions its
// access groups. The creator becomes the first admin member.
func (h *EntitiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entityType, ok := h.entityType(w, r)
	if !ok {
		return
	}
	var body struct {
		Name     string  `json:"name" validate:"required,max=255"`
		Fields   string  `json:"fields"`
		ParentID *string `json:"parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := validate.Struct(body); err != nil {
		writeErr(w, http.StatusBadRequest, "name required")
		return
	}
	input := entity.CreateEntityInput{
		Type:      entityType,
		Name:      body.Name,
		Fields:    body.Fields,
		CreatedBy: actor.ID,
	}
	if body.ParentID != nil {
		parentID, err := uuid.Parse(*body.ParentID)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid parent id")
			return
		}
		pid := domain.NewEntityID(parentID)
		input.ParentID = &pid
	}
	created, err := h.createUC.Execute(r.Context(), input)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	middleware.RecordGroupsProvisioned(string(entityType))
	writeJSON(w, http.StatusCreated, entityResponse(created))
}

// Get returns one entity's detail view with capabilities and children.
func (h *EntitiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entityType, ok := h.entityType(w, r)
	if !ok {
		return
	}
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}
	detail, err := h.getUC.Execute(r.Context(), id, actor.ID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if detail.Entity.Type != entityType {
		writeErr(w, http.StatusNotFound, "entity not found")
		return
	}
	children := make([]EntityResponse, 0, len(detail.Children))
	for _, c := range detail.Children {
		children = append(children, entityResponse(c))
	}
	writeJSON(w, http.StatusOK, EntityDetailResponse{
		EntityResponse: entityResponse(detail.Entity),
		CanChange:      detail.CanChange,
		CanDelete:      detail.CanDelete,
		Children:       children,
	})
}

// Update rewrites the entity's content. Requires change access.
func (h *EntitiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if _, ok := h.entityType(w, r); !ok {
		return
	}
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}
	var body struct {
		Name   string `json:"name" validate:"required,max=255"`
		Fields string `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := validate.Struct(body); err != nil {
		writeErr(w, http.StatusBadRequest, "name required")
		return
	}
	updated, err := h.updateUC.Execute(r.Context(), entity.UpdateEntityInput{
		ID:     id,
		Name:   body.Name,
		Fields: body.Fields,
		Actor:  actor.ID,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entityResponse(updated))
}

// Delete removes the entity, its descendants and all their groups.
// Requires delete access.
func (h *EntitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if _, ok := h.entityType(w, r); !ok {
		return
	}
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}
	if err := h.deleteUC.Execute(r.Context(), id, actor.ID); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Members returns the entity's access groups with their members.
// Requires change access, mirroring who may manage users.
func (h *EntitiesHandler) Members(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if _, ok := h.entityType(w, r); !ok {
		return
	}
	id, ok := h.entityID(w, r)
	if !ok {
		return
	}
	detail, err := h.getUC.Execute(r.Context(), id, actor.ID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if !detail.CanChange {
		writeDomainErr(w, domerrors.ErrForbidden)
		return
	}
	groups, err := h.groupRepo.ListForEntity(r.Context(), id)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	items := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		members, err := h.groupRepo.ListMembers(r.Context(), g.ID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, "internal error")
			return
		}
		actions := make([]string, 0, len(g.Actions))
		for _, a := range g.Actions {
			actions = append(actions, string(a))
		}
		memberIDs := make([]string, 0, len(members))
		for _, m := range members {
			memberIDs = append(memberIDs, m.String())
		}
		items = append(items, GroupResponse{
			ID:      g.ID.String(),
			Role:    string(g.Role),
			Name:    g.Name,
			Actions: actions,
			Members: memberIDs,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": items})
}
