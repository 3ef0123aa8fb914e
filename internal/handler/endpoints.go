package handler

// endpoints.go implements the generic create, update and delete endpoints

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dolmen-go/jsonmap"
	"go.uber.org/zap"

	"github.com/andrewwphillips/castnet/internal/mutation"
	"github.com/andrewwphillips/castnet/internal/schema"
)

// Response to a successful delete
const deleted = "Deleted"

// fixedKeys can't be changed by an update
var fixedKeys = []string{"id", schema.ParentRelationship, "name"}

// create adds a node, returning its properties.  The name must be unique among the
// children of the parent (if the label has one) or among all nodes of the label.
// Note that the uniqueness check and the create are separate queries so two concurrent
// creates can both succeed.
func (h *Handler) create(ctx context.Context, label string, payload jsonmap.Ordered) (interface{}, *failure) {
	name, _ := payload.Data["name"].(string)
	if name == "" {
		return nil, h.refuse(errors.New("you must specify a name"))
	}
	if strings.Contains(name, "/") {
		return nil, h.refuse(fmt.Errorf("forward slashes are not allowed in names, you provided %q", name))
	}

	l, _ := h.schema.Label(label)
	if rel, ok := l.Relationship(schema.ParentRelationship); ok {
		parentID, _ := payload.Data[schema.ParentRelationship].(string)
		if parentID == "" {
			return nil, h.refuse(fmt.Errorf("you are missing the parent node, please specify it with the %q relation",
				schema.ParentRelationship))
		}
		rows, err := h.read(ctx, mutation.ParentCheck(label, rel.Target), map[string]interface{}{"id": parentID})
		if err != nil {
			return nil, h.storeFailed(err)
		}
		if len(rows) == 0 {
			return nil, h.refuse(fmt.Errorf("the resource id %s does not match any node labeled as %s", parentID, rel.Target))
		}
		for _, row := range rows {
			if property(row.Data["b"], "name") == name {
				return nil, h.refuse(fmt.Errorf("the name %s already exists", name))
			}
		}
	} else {
		rows, err := h.read(ctx, mutation.NameCheck(label), map[string]interface{}{"name": name})
		if err != nil {
			return nil, h.storeFailed(err)
		}
		if len(rows) > 0 {
			return nil, h.refuse(errors.New("you already have a resource with that name"))
		}
	}

	q, err := h.compiler.Create(label, payload)
	if err != nil {
		return nil, h.refuse(err)
	}
	rows, err := h.write(ctx, q)
	if err != nil {
		return nil, h.storeFailed(err)
	}
	if len(rows) == 0 {
		return nil, h.refuse(fmt.Errorf("error creating new %s, your fields might be the wrong type or the connections might not exist", label))
	}
	r := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		r = append(r, row.Data["source"])
	}
	return r, nil
}

// update changes the attributes and relationships of an existing node, returning its properties
func (h *Handler) update(ctx context.Context, label, id string, payload jsonmap.Ordered) (interface{}, *failure) {
	for _, key := range fixedKeys {
		if _, ok := payload.Data[key]; ok {
			return nil, h.refuse(errors.New("you are not allowed to change the id, name, or target parent node"))
		}
	}
	q, err := h.compiler.Update(label, id, payload)
	if err != nil {
		return nil, h.refuse(err)
	}
	rows, err := h.write(ctx, q)
	if err != nil {
		return nil, h.storeFailed(err)
	}
	if len(rows) == 0 || len(rows[0].Order) == 0 {
		return nil, h.refuse(fmt.Errorf("error updating %s, it may not exist or your entries might be the wrong type", label))
	}
	return rows[0].Data[rows[0].Order[0]], nil
}

// remove archives a node unless other nodes are still IS_IN it.  The dependency check
// and the delete are separate queries so a dependent created in between is not noticed.
func (h *Handler) remove(ctx context.Context, label, id string) (interface{}, *failure) {
	if deps := h.compiler.Dependencies(label); deps != "" {
		rows, err := h.read(ctx, deps, map[string]interface{}{"id": id})
		if err != nil {
			return nil, h.storeFailed(err)
		}
		if len(rows) > 0 {
			return nil, h.refuse(fmt.Errorf("%s %s still has %d dependencies and cannot be deleted until they are deleted",
				label, id, len(rows)))
		}
	}
	if _, err := h.write(ctx, mutation.Delete(label, id)); err != nil {
		return nil, h.storeFailed(err)
	}
	return deleted, nil
}

// property returns a string property of a node returned in a row (or "" if not found)
func property(node interface{}, key string) string {
	var v interface{}
	switch n := node.(type) {
	case jsonmap.Ordered:
		v = n.Data[key]
	case map[string]interface{}:
		v = n[key]
	}
	s, _ := v.(string)
	return s
}

func (h *Handler) read(ctx context.Context, query string, params map[string]interface{}) ([]jsonmap.Ordered, error) {
	h.log.Debug("read", zap.String("query", query), zap.Any("params", params))
	start := time.Now()
	defer func() { h.metrics.ObserveDB("read", time.Since(start)) }()
	return h.store.Read(ctx, query, params)
}

func (h *Handler) write(ctx context.Context, q mutation.Query) ([]jsonmap.Ordered, error) {
	h.log.Debug("write", zap.String("query", q.Text), zap.Any("params", q.Params))
	start := time.Now()
	defer func() { h.metrics.ObserveDB("write", time.Since(start)) }()
	return h.store.Write(ctx, q.Text, q.Params)
}
