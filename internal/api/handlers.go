package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skylark/internal/entity"
)

// POST /api/:entity
func CreateHandler(h *Handle) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := h.typeByName(c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "entity not found"})
			return
		}
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		h.mu.Lock()
		defer h.mu.Unlock()

		in, err := t.FromJSON(body)
		if err != nil {
			var syn *json.SyntaxError
			var typ *json.UnmarshalTypeError
			if errors.As(err, &syn) || errors.As(err, &typ) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
				return
			}
			status, payload := statusFor(err)
			c.JSON(status, payload)
			return
		}
		if err := in.Insert(c.Request.Context(), h.store); err != nil {
			status, payload := statusFor(err)
			c.JSON(status, payload)
			return
		}
		c.JSON(http.StatusCreated, in)
	}
}

// GET /api/:entity/:key
func GetOneHandler(h *Handle) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := h.typeByName(c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "entity not found"})
			return
		}
		key, err := parseKey(t, c.Param("key"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		h.mu.Lock()
		in, err := t.FindByKey(c.Request.Context(), h.store, key)
		h.mu.Unlock()
		if err != nil {
			status, payload := statusFor(err)
			c.JSON(status, payload)
			return
		}

		body, err := json.Marshal(in)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		etag := etagOf(body)
		if c.GetHeader("If-None-Match") == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	}
}

// GET /api/:entity?limit=&offset=
func ListHandler(h *Handle) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := h.typeByName(c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "entity not found"})
			return
		}
		q := t.Get()
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "bad limit"})
				return
			}
			q.Limit(n)
		}
		if raw := c.Query("offset"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "bad offset"})
				return
			}
			q.Offset(n)
		}

		h.mu.Lock()
		items, err := q.All(c.Request.Context(), h.store)
		h.mu.Unlock()
		if err != nil {
			status, payload := statusFor(err)
			c.JSON(status, payload)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// PUT /api/:entity/:key — full update; PATCH — partial.
func UpdateHandler(h *Handle, partial bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := h.typeByName(c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "entity not found"})
			return
		}
		key, err := parseKey(t, c.Param("key"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var values map[string]any
		if err := c.ShouldBindJSON(&values); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
			return
		}

		h.mu.Lock()
		defer h.mu.Unlock()

		in, err := t.FindByKey(c.Request.Context(), h.store, key)
		if err != nil {
			status, payload := statusFor(err)
			c.JSON(status, payload)
			return
		}
		if err := applyValues(in, values, !partial); err != nil {
			status, payload := statusFor(err)
			c.JSON(status, payload)
			return
		}
		if err := in.Update(c.Request.Context(), h.store); err != nil {
			status, payload := statusFor(err)
			c.JSON(status, payload)
			return
		}
		c.JSON(http.StatusOK, in)
	}
}

// DELETE /api/:entity/:key
func DeleteHandler(h *Handle) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := h.typeByName(c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "entity not found"})
			return
		}
		key, err := parseKey(t, c.Param("key"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		h.mu.Lock()
		defer h.mu.Unlock()

		in, err := t.FindByKey(c.Request.Context(), h.store, key)
		if err != nil {
			status, payload := statusFor(err)
			c.JSON(status, payload)
			return
		}
		if err := in.Delete(c.Request.Context(), h.store); err != nil {
			status, payload := statusFor(err)
			c.JSON(status, payload)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// applyValues writes named values onto an instance. strict requires every
// mutable declared field; otherwise only provided ones are touched. Key
// columns are never written through this path.
func applyValues(in *entity.Instance, values map[string]any, strict bool) error {
	t := in.Type()
	keyCols := make(map[string]bool)
	for _, p := range t.Key().Props() {
		keyCols[p.Name()] = true
	}
	for _, p := range t.Props() {
		if p.Surrogate() || keyCols[p.Name()] {
			continue
		}
		if ownedByRef(t, p) {
			continue
		}
		v, ok := values[p.Name()]
		if !ok {
			if strict && p.Required() {
				return &entity.PropertyConstraintError{Instance: in, Property: p}
			}
			continue
		}
		if err := in.Set(p, v); err != nil {
			return err
		}
	}
	for _, r := range t.References() {
		refInKey := false
		for _, p := range r.Props() {
			if keyCols[p.Name()] {
				refInKey = true
			}
		}
		if refInKey {
			continue
		}
		v, ok := values[r.Name()]
		if !ok {
			continue
		}
		if err := in.SetReference(r, v); err != nil {
			return err
		}
	}
	return nil
}

func ownedByRef(t *entity.Type, p *entity.Property) bool {
	for _, r := range t.References() {
		for _, rp := range r.Props() {
			if rp == p {
				return true
			}
		}
	}
	return false
}
