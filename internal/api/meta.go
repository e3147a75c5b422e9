package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skylark/internal/entity"
)

// ===== META HANDLERS =====

type metaField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	JSON     bool   `json:"json"`
}

type metaReference struct {
	Name    string   `json:"name"`
	Target  string   `json:"target"`
	Columns []string `json:"columns"`
}

type metaEntity struct {
	Entity     string          `json:"entity"`
	Table      string          `json:"table"`
	Key        []string        `json:"key"`
	RealTime   bool            `json:"realTime"`
	Fields     []metaField     `json:"fields"`
	References []metaReference `json:"references,omitempty"`
	SQL        []string        `json:"sql"`
}

func MetaListHandler(h *Handle) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := make([]string, 0, len(h.model.Types()))
		for _, t := range h.model.Types() {
			out = append(out, t.Name())
		}
		c.JSON(http.StatusOK, out)
	}
}

func MetaEntityHandler(h *Handle) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := h.typeByName(c.Param("entity"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "entity not found"})
			return
		}
		c.JSON(http.StatusOK, describe(t))
	}
}

func describe(t *entity.Type) metaEntity {
	m := metaEntity{
		Entity:   t.Name(),
		Table:    t.Table(),
		RealTime: t.RealTime(),
	}
	for _, p := range t.Key().Props() {
		m.Key = append(m.Key, p.Name())
	}
	for _, p := range t.Props() {
		m.Fields = append(m.Fields, metaField{
			Name:     p.Name(),
			Type:     p.Type().String(),
			Required: p.Required(),
			JSON:     p.InJSON(),
		})
	}
	for _, r := range t.References() {
		ref := metaReference{Name: r.Name(), Target: r.Target().Name()}
		for _, p := range r.Props() {
			ref.Columns = append(ref.Columns, p.Name())
		}
		m.References = append(m.References, ref)
	}
	for _, s := range t.Statements() {
		m.SQL = append(m.SQL, s.Text)
	}
	return m
}
